package tutorial

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type StepContentRepo interface {
	// GetByKey returns nil, nil when the key is not indexed.
	GetByKey(dbc dbctx.Context, key string) (*domain.StepContent, error)
	List(dbc dbctx.Context) ([]*domain.StepContent, error)
	Upsert(dbc dbctx.Context, rows []*domain.StepContent) (int, error)
}

type stepContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepContentRepo(db *gorm.DB, baseLog *logger.Logger) StepContentRepo {
	return &stepContentRepo{db: db, log: baseLog.With("repo", "StepContentRepo")}
}

func (r *stepContentRepo) GetByKey(dbc dbctx.Context, key string) (*domain.StepContent, error) {
	if key == "" {
		return nil, nil
	}
	var out domain.StepContent
	err := dbc.DB(r.db).Where("content_key = ?", key).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *stepContentRepo) List(dbc dbctx.Context) ([]*domain.StepContent, error) {
	out := []*domain.StepContent{}
	if err := dbc.DB(r.db).Order("step ASC, substep ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stepContentRepo) Upsert(dbc dbctx.Context, rows []*domain.StepContent) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"step", "substep", "object", "updated_at"}),
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
