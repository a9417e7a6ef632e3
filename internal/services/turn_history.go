package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

// TurnHistory reads back the turn log written by the tutor.
type TurnHistory interface {
	// Session returns a session's turns, newest first.
	Session(ctx context.Context, sessionID string, limit int) ([]*domain.TutorTurn, error)
	// Outcomes counts turns per outcome; an empty platform counts all of them.
	Outcomes(ctx context.Context, platform string) (map[string]int64, error)
}

type turnHistory struct {
	log   *logger.Logger
	turns repos.TutorTurnRepo
}

func NewTurnHistory(log *logger.Logger, turns repos.TutorTurnRepo) TurnHistory {
	return &turnHistory{log: log.With("service", "TurnHistory"), turns: turns}
}

func (s *turnHistory) Session(ctx context.Context, sessionID string, limit int) ([]*domain.TutorTurn, error) {
	sessionID = strings.TrimSpace(sessionID)
	rows, err := s.turns.ListBySession(dbctx.Context{Ctx: ctx}, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns for session %q: %w", sessionID, err)
	}
	return rows, nil
}

func (s *turnHistory) Outcomes(ctx context.Context, platform string) (map[string]int64, error) {
	counts, err := s.turns.CountByOutcome(dbctx.Context{Ctx: ctx}, strings.TrimSpace(platform))
	if err != nil {
		return nil, fmt.Errorf("count turn outcomes: %w", err)
	}
	return counts, nil
}
