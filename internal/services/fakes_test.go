package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
)

type fakeContentStore struct {
	mu    sync.Mutex
	texts map[tutorial.ContentKey]string
	errs  map[tutorial.ContentKey]error
	calls int
}

func (f *fakeContentStore) Get(_ context.Context, key tutorial.ContentKey) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	text, ok := f.texts[key]
	if !ok {
		return "", ErrContentNotFound
	}
	return text, nil
}

type fakeResponseStore struct {
	entries map[string][]tutorial.QAEntry
	err     error
}

func (f *fakeResponseStore) ListByTag(_ context.Context, tag string) ([]tutorial.QAEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[tag], nil
}

func (f *fakeResponseStore) Browse(ctx context.Context, tag, _ string) ([]tutorial.QAEntry, error) {
	return f.ListByTag(ctx, tag)
}

func (f *fakeResponseStore) Topics(_ context.Context) ([]string, error) {
	out := []string{}
	for tag := range f.entries {
		out = append(out, tag)
	}
	return out, f.err
}

type fakeTurnRepo struct {
	mu   sync.Mutex
	rows []*domain.TutorTurn
	err  error
}

func (f *fakeTurnRepo) Create(_ dbctx.Context, turn *domain.TutorTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, turn)
	return nil
}

func (f *fakeTurnRepo) ListBySession(_ dbctx.Context, sessionID string, _ int) ([]*domain.TutorTurn, error) {
	out := []*domain.TutorTurn{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].SessionID == sessionID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeTurnRepo) CountByOutcome(_ dbctx.Context, _ string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, r := range f.rows {
		out[r.Outcome]++
	}
	return out, nil
}

type fakeStepIndex struct {
	rows map[string]*domain.StepContent
	err  error
}

func (f *fakeStepIndex) GetByKey(_ dbctx.Context, key string) (*domain.StepContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[key], nil
}

func (f *fakeStepIndex) List(_ dbctx.Context) ([]*domain.StepContent, error) {
	out := []*domain.StepContent{}
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStepIndex) Upsert(_ dbctx.Context, rows []*domain.StepContent) (int, error) {
	for _, r := range rows {
		f.rows[r.Key] = r
	}
	return len(rows), nil
}

type fakeBucket struct {
	objects map[string]string
	err     error
	reads   []string
}

func (f *fakeBucket) ReadText(_ context.Context, object string) (string, error) {
	f.reads = append(f.reads, object)
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.objects[object]
	if !ok {
		return "", gcp.ErrObjectNotFound
	}
	return text, nil
}

func (f *fakeBucket) Upload(_ context.Context, object string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[object] = string(b)
	return nil
}

func (f *fakeBucket) Delete(_ context.Context, object string) error {
	delete(f.objects, object)
	return nil
}

func (f *fakeBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	out := []string{}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeBucket) Name() string { return "fake-bucket" }

type fakeTextCache struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func (f *fakeTextCache) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeTextCache) Set(_ context.Context, key, val string, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = val
	return nil
}

func (f *fakeTextCache) Close() error { return nil }

var errBoom = errors.New("boom")
