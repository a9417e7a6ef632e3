package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

const maxConcurrentUploads = 4

// Entry is one question bank row as written in a seed file.
type Entry struct {
	Topic    string `yaml:"topic"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type File struct {
	Entries []Entry `yaml:"entries"`
}

func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return ParseFile(raw)
}

// ParseFile decodes and validates a seed file. Every field is required and a
// topic/question pair may only appear once.
func ParseFile(raw []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	seen := make(map[string]int, len(f.Entries))
	for i := range f.Entries {
		e := &f.Entries[i]
		e.Topic = strings.TrimSpace(e.Topic)
		e.Question = strings.TrimSpace(e.Question)
		e.Answer = strings.TrimSpace(e.Answer)
		if e.Topic == "" || e.Question == "" || e.Answer == "" {
			return File{}, fmt.Errorf("seed entry %d: topic, question and answer are required", i+1)
		}
		id := domain.QAEntryID(e.Topic, e.Question)
		if prev, dup := seen[id]; dup {
			return File{}, fmt.Errorf("seed entry %d duplicates entry %d (%s)", i+1, prev+1, id)
		}
		seen[id] = i
	}
	return f, nil
}

// Topics returns the distinct topics in first-seen order.
func (f File) Topics() []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range f.Entries {
		if !seen[e.Topic] {
			seen[e.Topic] = true
			out = append(out, e.Topic)
		}
	}
	return out
}

// QAEntries numbers entries within their topic in file order.
func (f File) QAEntries() []*domain.QAEntry {
	out := make([]*domain.QAEntry, 0, len(f.Entries))
	seq := map[string]int{}
	for _, e := range f.Entries {
		out = append(out, &domain.QAEntry{
			ID:       domain.QAEntryID(e.Topic, e.Question),
			Topic:    e.Topic,
			Question: e.Question,
			Answer:   e.Answer,
			Sequence: seq[e.Topic],
		})
		seq[e.Topic]++
	}
	return out
}

// StepRows builds the step index for every position of the curriculum.
func StepRows(cur tutorial.Curriculum) []*domain.StepContent {
	positions := cur.Positions()
	out := make([]*domain.StepContent, 0, len(positions))
	for _, p := range positions {
		out = append(out, &domain.StepContent{
			Key:     tutorial.KeyFor(p).String(),
			Step:    p.Step,
			Substep: p.Substep,
			Object:  tutorial.ObjectName(p),
		})
	}
	return out
}

type Options struct {
	DryRun bool
	// ReplaceTopics drops existing entries of every seeded topic first.
	ReplaceTopics bool
	// ContentDir holds local Paso files to upload; empty skips uploads.
	ContentDir string
	Folder     string
	// Prune deletes folder objects outside the curriculum after uploading.
	Prune bool
}

type Result struct {
	Entries  int
	Steps    int
	Uploaded int
	Pruned   []string
	// Missing lists objects that have no file in ContentDir.
	Missing []string
}

type Seeder struct {
	log    *logger.Logger
	db     *gorm.DB
	qa     repos.QAEntryRepo
	steps  repos.StepContentRepo
	bucket gcp.ContentBucket
}

// New builds a seeder. bucket may be nil when no content is uploaded.
func New(log *logger.Logger, db *gorm.DB, qa repos.QAEntryRepo, steps repos.StepContentRepo, bucket gcp.ContentBucket) *Seeder {
	return &Seeder{
		log:    log.With("service", "Seeder"),
		db:     db,
		qa:     qa,
		steps:  steps,
		bucket: bucket,
	}
}

// Run loads the question bank and the step index in one transaction, then
// uploads the content files when a content dir is given and prunes stale
// objects when asked.
func (s *Seeder) Run(ctx context.Context, f File, cur tutorial.Curriculum, opts Options) (Result, error) {
	entries := f.QAEntries()
	rows := StepRows(cur)
	res := Result{Entries: len(entries), Steps: len(rows)}

	if opts.ContentDir != "" && s.bucket == nil {
		return res, errors.New("content upload needs a bucket (CONTENT_GCS_BUCKET_NAME)")
	}
	if opts.Prune && s.bucket == nil {
		return res, errors.New("prune needs a bucket (CONTENT_GCS_BUCKET_NAME)")
	}
	if opts.DryRun {
		s.log.Info("Dry run", "entries", res.Entries, "steps", res.Steps, "topics", len(f.Topics()))
		if opts.ContentDir != "" {
			res.Missing = missingFiles(opts.ContentDir, rows)
		}
		return res, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if opts.ReplaceTopics {
			for _, topic := range f.Topics() {
				if err := s.qa.DeleteByTopic(dbc, topic); err != nil {
					return fmt.Errorf("clear topic %s: %w", topic, err)
				}
			}
		}
		if _, err := s.qa.Upsert(dbc, entries); err != nil {
			return fmt.Errorf("upsert qa entries: %w", err)
		}
		if _, err := s.steps.Upsert(dbc, rows); err != nil {
			return fmt.Errorf("upsert step index: %w", err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	s.log.Info("Seed loaded", "entries", res.Entries, "steps", res.Steps)

	if opts.ContentDir != "" {
		uploaded, missing, err := s.upload(ctx, opts.ContentDir, opts.Folder, rows)
		res.Uploaded = uploaded
		res.Missing = missing
		if err != nil {
			return res, err
		}
	}
	if opts.Prune {
		pruned, err := s.Prune(ctx, cur, opts.Folder)
		res.Pruned = pruned
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Seeder) upload(ctx context.Context, dir, folder string, rows []*domain.StepContent) (int, []string, error) {
	var (
		mu       sync.Mutex
		uploaded int
		missing  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for _, row := range rows {
		g.Go(func() error {
			f, err := os.Open(filepath.Join(dir, row.Object))
			if errors.Is(err, os.ErrNotExist) {
				s.log.Warn("content file missing", "object", row.Object, "dir", dir)
				mu.Lock()
				missing = append(missing, row.Object)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("open %s: %w", row.Object, err)
			}
			defer f.Close()
			object := gcp.ObjectPath(folder, row.Object)
			if err := s.bucket.Upload(gctx, object, f); err != nil {
				return fmt.Errorf("upload %s: %w", object, err)
			}
			mu.Lock()
			uploaded++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	sort.Strings(missing)
	if err == nil {
		s.log.Info("Content uploaded", "uploaded", uploaded, "missing", len(missing), "bucket", s.bucket.Name())
	}
	return uploaded, missing, err
}

// CheckReport lists the differences between the curriculum, the step index
// and the bucket.
type CheckReport struct {
	// MissingObjects are curriculum objects with no blob under the folder.
	MissingObjects []string
	// MissingIndex are curriculum keys with no step index row, or a row
	// pointing at the wrong object.
	MissingIndex []string
	// StaleIndex are index rows outside the curriculum or with a malformed key.
	StaleIndex []string
}

func (r CheckReport) OK() bool {
	return len(r.MissingObjects) == 0 && len(r.MissingIndex) == 0 && len(r.StaleIndex) == 0
}

// Check compares the curriculum against the step index and the blobs
// under folder.
func (s *Seeder) Check(ctx context.Context, cur tutorial.Curriculum, folder string) (CheckReport, error) {
	var report CheckReport
	if s.bucket == nil {
		return report, errors.New("check needs a bucket (CONTENT_GCS_BUCKET_NAME)")
	}
	keys, err := s.bucket.ListKeys(ctx, folderPrefix(folder))
	if err != nil {
		return report, fmt.Errorf("list %s: %w", folderPrefix(folder), err)
	}
	have := make(map[string]bool, len(keys))
	for _, k := range keys {
		have[k] = true
	}

	indexed, err := s.steps.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return report, fmt.Errorf("list step index: %w", err)
	}
	byKey := make(map[string]*domain.StepContent, len(indexed))
	for _, row := range indexed {
		pos, err := tutorial.ParseKey(row.Key)
		if err != nil || !cur.Contains(pos) {
			report.StaleIndex = append(report.StaleIndex, row.Key)
			continue
		}
		byKey[row.Key] = row
	}

	for _, want := range StepRows(cur) {
		if object := gcp.ObjectPath(folder, want.Object); !have[object] {
			report.MissingObjects = append(report.MissingObjects, object)
		}
		if got, ok := byKey[want.Key]; !ok || got.Object != want.Object {
			report.MissingIndex = append(report.MissingIndex, want.Key)
		}
	}
	return report, nil
}

// Prune deletes the objects under folder that no curriculum position names.
func (s *Seeder) Prune(ctx context.Context, cur tutorial.Curriculum, folder string) ([]string, error) {
	if s.bucket == nil {
		return nil, errors.New("prune needs a bucket (CONTENT_GCS_BUCKET_NAME)")
	}
	keys, err := s.bucket.ListKeys(ctx, folderPrefix(folder))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folderPrefix(folder), err)
	}
	keep := map[string]bool{}
	for _, row := range StepRows(cur) {
		keep[gcp.ObjectPath(folder, row.Object)] = true
	}
	var pruned []string
	for _, k := range keys {
		if keep[k] {
			continue
		}
		if err := s.bucket.Delete(ctx, k); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
			return pruned, fmt.Errorf("delete %s: %w", k, err)
		}
		pruned = append(pruned, k)
	}
	sort.Strings(pruned)
	if len(pruned) > 0 {
		s.log.Info("Content pruned", "objects", len(pruned), "bucket", s.bucket.Name())
	}
	return pruned, nil
}

func folderPrefix(folder string) string {
	prefix := gcp.ObjectPath(folder, "")
	if prefix != "" {
		prefix += "/"
	}
	return prefix
}

func missingFiles(dir string, rows []*domain.StepContent) []string {
	var out []string
	for _, row := range rows {
		if _, err := os.Stat(filepath.Join(dir, row.Object)); err != nil {
			out = append(out, row.Object)
		}
	}
	return out
}
