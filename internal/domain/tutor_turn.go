package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TutorTurn records one handled webhook turn.
type TutorTurn struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    string         `gorm:"column:session_id;not null;index:idx_tutor_turn_session,priority:1" json:"session_id"`
	Platform     string         `gorm:"column:platform;not null;index" json:"platform"`
	RequestID    string         `gorm:"column:request_id" json:"request_id,omitempty"`
	IntentName   string         `gorm:"column:intent_name;not null" json:"intent_name"`
	Intent       string         `gorm:"column:intent;index" json:"intent"`
	Outcome      string         `gorm:"column:outcome;not null;index" json:"outcome"`
	Step         int            `gorm:"column:step" json:"step"`
	Substep      int            `gorm:"column:substep" json:"substep"`
	Finished     bool           `gorm:"column:finished" json:"finished"`
	MessageCount int            `gorm:"column:message_count" json:"message_count"`
	Data         datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime;index:idx_tutor_turn_session,priority:2" json:"created_at"`
}

func (TutorTurn) TableName() string { return "tutor_turn" }

func (t *TutorTurn) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
