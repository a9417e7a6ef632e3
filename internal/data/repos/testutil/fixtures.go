package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/domain"
)

func SeedQAEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, topic, question, answer string, seq int) *domain.QAEntry {
	tb.Helper()
	e := &domain.QAEntry{
		ID:       domain.QAEntryID(topic, question),
		Topic:    topic,
		Question: question,
		Answer:   answer,
		Sequence: seq,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed qa entry: %v", err)
	}
	return e
}

func SeedStepContent(tb testing.TB, ctx context.Context, tx *gorm.DB, key string, step, substep int, object string) *domain.StepContent {
	tb.Helper()
	row := &domain.StepContent{Key: key, Step: step, Substep: substep, Object: object}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed step content: %v", err)
	}
	return row
}
