package tutorial

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type QAEntryRepo interface {
	// ListByTopic returns a topic's entries in store order (sequence, then id).
	ListByTopic(dbc dbctx.Context, topic string) ([]*domain.QAEntry, error)
	Topics(dbc dbctx.Context) ([]string, error)
	Upsert(dbc dbctx.Context, entries []*domain.QAEntry) (int, error)
	DeleteByTopic(dbc dbctx.Context, topic string) error
}

type qaEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQAEntryRepo(db *gorm.DB, baseLog *logger.Logger) QAEntryRepo {
	return &qaEntryRepo{db: db, log: baseLog.With("repo", "QAEntryRepo")}
}

func (r *qaEntryRepo) ListByTopic(dbc dbctx.Context, topic string) ([]*domain.QAEntry, error) {
	out := []*domain.QAEntry{}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("topic = ?", topic).
		Order("sequence ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *qaEntryRepo) Topics(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Model(&domain.QAEntry{}).
		Distinct("topic").
		Order("topic ASC").
		Pluck("topic", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts entries or overwrites the answer and order of existing ids.
func (r *qaEntryRepo) Upsert(dbc dbctx.Context, entries []*domain.QAEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = domain.QAEntryID(e.Topic, e.Question)
		}
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"topic", "question", "answer", "sequence", "updated_at"}),
		}).
		Create(&entries)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *qaEntryRepo) DeleteByTopic(dbc dbctx.Context, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return nil
	}
	return dbc.DB(r.db).Where("topic = ?", topic).Delete(&domain.QAEntry{}).Error
}
