package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

// maxConcurrentFetches bounds the content reads of one full_step delivery.
const maxConcurrentFetches = 4

// TutorService handles one decoded platform turn and produces the reply.
type TutorService interface {
	// Handle never fails on collaborator errors; those become fixed
	// messages in the Reply. err is only set when ctx is already done.
	Handle(ctx context.Context, turn tutorial.Turn) (tutorial.Reply, error)
	Intents() tutorial.IntentTable
	MaxStep() int
}

type tutorService struct {
	log       *logger.Logger
	nav       *tutorial.Navigator
	matcher   *tutorial.Matcher
	intents   tutorial.IntentTable
	messages  tutorial.Messages
	content   ContentStore
	responses ResponseStore
	turns     repos.TutorTurnRepo
	metrics   *observability.Metrics
}

type TutorServiceDeps struct {
	Config    tutorial.Config
	Content   ContentStore
	Responses ResponseStore
	// Turns is optional; without it turns are not recorded.
	Turns   repos.TutorTurnRepo
	Metrics *observability.Metrics
}

func NewTutorService(log *logger.Logger, deps TutorServiceDeps) (TutorService, error) {
	if deps.Content == nil {
		return nil, errors.New("tutor service: content store required")
	}
	if deps.Responses == nil {
		return nil, errors.New("tutor service: response store required")
	}
	nav, err := deps.Config.Navigator()
	if err != nil {
		return nil, err
	}
	return &tutorService{
		log:       log.With("service", "TutorService", "tutorial", deps.Config.Name),
		nav:       nav,
		matcher:   tutorial.NewMatcher(deps.Config.Messages.NoAnswer),
		intents:   deps.Config.Intents,
		messages:  deps.Config.Messages,
		content:   deps.Content,
		responses: deps.Responses,
		turns:     deps.Turns,
		metrics:   deps.Metrics,
	}, nil
}

func (s *tutorService) Intents() tutorial.IntentTable { return s.intents }

func (s *tutorService) MaxStep() int { return s.nav.Curriculum().MaxStep() }

// turnNotes is what a turn leaves behind for the turn log.
type turnNotes struct {
	Keys       []string `json:"keys,omitempty"`
	MatchScore *float64 `json:"match_score,omitempty"`
	Candidates *int     `json:"candidates,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (s *tutorService) Handle(ctx context.Context, turn tutorial.Turn) (tutorial.Reply, error) {
	if err := ctx.Err(); err != nil {
		return tutorial.Reply{}, err
	}
	started := time.Now()
	intent := intentLabel(turn)
	ctx, span := observability.Tracer().Start(ctx, "tutor.turn", trace.WithAttributes(
		attribute.String("tutor.platform", turn.Platform),
		attribute.String("tutor.intent", intent),
		attribute.String("tutor.intent_name", turn.IntentName),
	))
	defer span.End()

	reply, notes := s.dispatch(ctx, turn)

	span.SetAttributes(
		attribute.String("tutor.outcome", string(reply.Outcome)),
		attribute.Int("tutor.messages", len(reply.Messages)),
	)
	if reply.Outcome == tutorial.OutcomeFailure || reply.Outcome == tutorial.OutcomeContentUnavailable {
		span.SetStatus(codes.Error, notes.Error)
	}
	s.metrics.ObserveTurn(turn.Platform, intent, string(reply.Outcome), time.Since(started))
	s.log.Debug("turn handled",
		"session_id", turn.SessionID,
		"platform", turn.Platform,
		"intent", intent,
		"outcome", reply.Outcome,
		"position", reply.Session.Position.String(),
	)
	s.record(ctx, turn, reply, notes)
	return reply, nil
}

func intentLabel(turn tutorial.Turn) string {
	if turn.Intent == nil {
		return "unresolved"
	}
	return turn.Intent.Name()
}

func (s *tutorService) dispatch(ctx context.Context, turn tutorial.Turn) (tutorial.Reply, turnNotes) {
	if turn.ResolveErr != nil {
		if errors.Is(turn.ResolveErr, tutorial.ErrInvalidStepSlot) {
			return s.keep(tutorial.OutcomeMissingStep, s.withMax(s.messages.MissingStep)), turnNotes{Error: turn.ResolveErr.Error()}
		}
		s.log.Info("unsupported intent", "intent_name", turn.IntentName, "platform", turn.Platform)
		return s.keep(tutorial.OutcomeUnsupported, s.messages.Unsupported), turnNotes{Error: turn.ResolveErr.Error()}
	}

	switch in := turn.Intent.(type) {
	case tutorial.StartTutorial:
		return tutorial.Reply{
			Messages: []string{s.messages.Welcome},
			Session:  tutorial.FreshSession(),
			Outcome:  tutorial.OutcomeWelcome,
		}, turnNotes{}
	case tutorial.Question:
		return s.answer(ctx, in)
	case tutorial.NextStep, tutorial.RepeatStep, tutorial.GoToStep:
		return s.navigate(ctx, turn)
	default:
		return s.keep(tutorial.OutcomeUnsupported, s.messages.Unsupported), turnNotes{}
	}
}

// keep builds a reply that leaves the platform's session attributes alone.
func (s *tutorService) keep(outcome tutorial.Outcome, msg string) tutorial.Reply {
	return tutorial.Reply{Messages: []string{msg}, KeepSession: true, Outcome: outcome}
}

func (s *tutorService) withMax(msg string) string {
	return s.messages.WithMax(msg, s.MaxStep())
}

func (s *tutorService) navigate(ctx context.Context, turn tutorial.Turn) (tutorial.Reply, turnNotes) {
	if turn.SessionErr != nil {
		s.log.Warn("unreadable session cursor", "session_id", turn.SessionID, "error", turn.SessionErr)
		return s.keep(tutorial.OutcomeRestart, s.messages.Restart), turnNotes{Error: turn.SessionErr.Error()}
	}
	st := turn.Session
	if st.Finished {
		return tutorial.Reply{
			Messages: []string{s.messages.AlreadyFinished},
			Session:  st,
			Outcome:  tutorial.OutcomeAlreadyFinished,
		}, turnNotes{}
	}
	if err := s.nav.Validate(st.Position); err != nil {
		s.log.Warn("session cursor outside curriculum", "session_id", turn.SessionID, "position", st.Position.String())
		return s.keep(tutorial.OutcomeRestart, s.messages.Restart), turnNotes{Error: err.Error()}
	}

	var target tutorial.Position
	switch in := turn.Intent.(type) {
	case tutorial.NextStep:
		target = st.Position
		if st.Delivered {
			target = s.nav.Advance(st.Position)
		}
		if target.IsFinished() {
			return tutorial.Reply{
				Messages: []string{s.messages.Completed},
				Session:  tutorial.SessionState{Position: tutorial.Finished, Delivered: true, Finished: true},
				Outcome:  tutorial.OutcomeCompleted,
			}, turnNotes{}
		}
	case tutorial.RepeatStep:
		target = s.nav.Repeat(st.Position)
	case tutorial.GoToStep:
		pos, err := s.nav.JumpTo(in.Step)
		if err != nil {
			return s.keep(tutorial.OutcomeOutOfRange, s.withMax(s.messages.OutOfRange)), turnNotes{Error: err.Error()}
		}
		target = pos
	}
	return s.deliver(ctx, target)
}

func (s *tutorService) deliver(ctx context.Context, target tutorial.Position) (tutorial.Reply, turnNotes) {
	keys := s.nav.ContentKeys(target)
	notes := turnNotes{Keys: make([]string, len(keys))}
	for i, k := range keys {
		notes.Keys[i] = k.String()
	}
	messages, failed := s.fetch(ctx, keys)
	if failed > 0 {
		// The cursor stays put so the same request retries the same content.
		notes.Error = fmt.Sprintf("%d of %d content reads failed", failed, len(keys))
		return tutorial.Reply{
			Messages:    messages,
			KeepSession: true,
			Outcome:     tutorial.OutcomeContentUnavailable,
		}, notes
	}
	return tutorial.Reply{
		Messages: messages,
		Session:  tutorial.SessionState{Position: s.nav.Settle(target), Delivered: true},
		Outcome:  tutorial.OutcomeDelivered,
	}, notes
}

// fetch reads every key concurrently and returns the texts in key order
// along with the number of reads that failed for reasons other than missing
// content. Failed reads become placeholders, so the group never aborts.
func (s *tutorService) fetch(ctx context.Context, keys []tutorial.ContentKey) ([]string, int) {
	out := make([]string, len(keys))
	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, key := range keys {
		g.Go(func() error {
			text, ok := s.contentText(gctx, key)
			out[i] = text
			if !ok {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, int(failed.Load())
}

// contentText reports false only when the store itself failed.
func (s *tutorService) contentText(ctx context.Context, key tutorial.ContentKey) (string, bool) {
	text, err := s.content.Get(ctx, key)
	switch {
	case errors.Is(err, ErrContentNotFound):
		s.log.Warn("content not found", "key", key.String(), "error", err)
		return s.messages.ContentNotFound, true
	case err != nil:
		s.log.Error("content fetch failed", "key", key.String(), "error", err)
		return s.messages.ContentUnavailable, false
	case strings.TrimSpace(text) == "":
		s.log.Warn("content is empty", "key", key.String())
		return s.messages.ContentNotFound, true
	}
	return text, true
}

func (s *tutorService) answer(ctx context.Context, q tutorial.Question) (tutorial.Reply, turnNotes) {
	candidates, err := s.responses.ListByTag(ctx, q.Topic)
	if err != nil {
		s.log.Error("response store failed", "topic", q.Topic, "error", err)
		return s.keep(tutorial.OutcomeFailure, s.messages.Failure), turnNotes{Error: err.Error()}
	}
	res := s.matcher.BestMatch(q.Topic, q.Text, candidates)
	s.metrics.ObserveMatch(q.Topic, res.Found, res.Score)
	n := len(candidates)
	notes := turnNotes{Candidates: &n}
	if !res.Found {
		return s.keep(tutorial.OutcomeNoAnswer, res.Answer), notes
	}
	score := res.Score
	notes.MatchScore = &score
	return s.keep(tutorial.OutcomeAnswered, res.Answer), notes
}

func (s *tutorService) record(ctx context.Context, turn tutorial.Turn, reply tutorial.Reply, notes turnNotes) {
	if s.turns == nil {
		return
	}
	st := reply.Session
	if reply.KeepSession {
		st = turn.Session
	}
	data, err := json.Marshal(notes)
	if err != nil {
		data = []byte("{}")
	}
	row := &domain.TutorTurn{
		SessionID:    turn.SessionID,
		Platform:     turn.Platform,
		RequestID:    ctxutil.RequestID(ctx),
		IntentName:   turn.IntentName,
		Intent:       intentLabel(turn),
		Outcome:      string(reply.Outcome),
		Step:         st.Position.Step,
		Substep:      st.Position.Substep,
		Finished:     st.Finished,
		MessageCount: len(reply.Messages),
		Data:         datatypes.JSON(data),
	}
	if err := s.turns.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		s.metrics.IncTurnLogError()
		s.log.Warn("turn log write failed", "session_id", turn.SessionID, "error", err)
	}
}
