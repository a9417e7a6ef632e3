package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

// ResponseStore serves the canned question bank by topic tag.
type ResponseStore interface {
	// ListByTag returns a topic's entries in store order.
	ListByTag(ctx context.Context, tag string) ([]tutorial.QAEntry, error)
	// Browse lists the entries whose question fuzzy-matches query, closest
	// first. An empty query lists everything in store order.
	Browse(ctx context.Context, tag, query string) ([]tutorial.QAEntry, error)
	// Topics lists the tags that have at least one entry, sorted.
	Topics(ctx context.Context) ([]string, error)
}

type responseStore struct {
	log  *logger.Logger
	repo repos.QAEntryRepo
}

func NewResponseStore(log *logger.Logger, repo repos.QAEntryRepo) ResponseStore {
	return &responseStore{log: log.With("service", "ResponseStore"), repo: repo}
}

func (s *responseStore) ListByTag(ctx context.Context, tag string) ([]tutorial.QAEntry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return []tutorial.QAEntry{}, nil
	}
	rows, err := s.repo.ListByTopic(dbctx.Context{Ctx: ctx}, tag)
	if err != nil {
		return nil, fmt.Errorf("list qa entries for %q: %w", tag, err)
	}
	rows = lo.Filter(rows, func(row *domain.QAEntry, _ int) bool { return row != nil })
	return lo.Map(rows, func(row *domain.QAEntry, _ int) tutorial.QAEntry {
		return tutorial.QAEntry{Topic: row.Topic, Question: row.Question, Answer: row.Answer}
	}), nil
}

func (s *responseStore) Browse(ctx context.Context, tag, query string) ([]tutorial.QAEntry, error) {
	entries, err := s.ListByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return entries, nil
	}
	questions := lo.Map(entries, func(e tutorial.QAEntry, _ int) string { return e.Question })
	ranks := fuzzy.RankFindNormalizedFold(query, questions)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	return lo.Map(ranks, func(r fuzzy.Rank, _ int) tutorial.QAEntry { return entries[r.OriginalIndex] }), nil
}

func (s *responseStore) Topics(ctx context.Context) ([]string, error) {
	topics, err := s.repo.Topics(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list qa topics: %w", err)
	}
	return lo.Compact(topics), nil
}
