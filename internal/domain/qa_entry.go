package domain

import (
	"strings"
	"time"
)

// QAEntry is one canned answer in the question bank. ID is
// "<Topic>_<Question>" so reseeding the same pair is an upsert.
type QAEntry struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Topic     string    `gorm:"column:topic;not null;index:idx_qa_entry_topic_seq,priority:1" json:"topic"`
	Question  string    `gorm:"column:question;type:text;not null" json:"question"`
	Answer    string    `gorm:"column:answer;type:text;not null" json:"answer"`
	Sequence  int       `gorm:"column:sequence;not null;index:idx_qa_entry_topic_seq,priority:2" json:"sequence"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (QAEntry) TableName() string { return "qa_entry" }

func QAEntryID(topic, question string) string {
	return strings.TrimSpace(topic) + "_" + strings.TrimSpace(question)
}
