package tutorial

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type TutorTurnRepo interface {
	Create(dbc dbctx.Context, turn *domain.TutorTurn) error
	// ListBySession returns the newest turns first.
	ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.TutorTurn, error)
	CountByOutcome(dbc dbctx.Context, platform string) (map[string]int64, error)
}

type tutorTurnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTutorTurnRepo(db *gorm.DB, baseLog *logger.Logger) TutorTurnRepo {
	return &tutorTurnRepo{db: db, log: baseLog.With("repo", "TutorTurnRepo")}
}

func (r *tutorTurnRepo) Create(dbc dbctx.Context, turn *domain.TutorTurn) error {
	if turn == nil {
		return nil
	}
	return dbc.DB(r.db).Create(turn).Error
}

func (r *tutorTurnRepo) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.TutorTurn, error) {
	out := []*domain.TutorTurn{}
	if strings.TrimSpace(sessionID) == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tutorTurnRepo) CountByOutcome(dbc dbctx.Context, platform string) (map[string]int64, error) {
	var rows []struct {
		Outcome string
		N       int64
	}
	q := dbc.DB(r.db).Model(&domain.TutorTurn{}).Select("outcome, COUNT(*) AS n")
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if err := q.Group("outcome").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Outcome] = row.N
	}
	return out, nil
}
