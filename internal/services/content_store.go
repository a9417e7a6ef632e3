package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/platform/redis"
)

// ErrContentNotFound marks a valid position whose text is missing.
var ErrContentNotFound = errors.New("content not found")

// ContentStore maps content keys to tutorial text.
type ContentStore interface {
	Get(ctx context.Context, key tutorial.ContentKey) (string, error)
}

type indexedContentStore struct {
	log     *logger.Logger
	index   repos.StepContentRepo
	bucket  gcp.ContentBucket
	folder  string
	metrics *observability.Metrics
}

// NewIndexedContentStore resolves keys through the step index, then reads the
// named object from folder in the bucket.
func NewIndexedContentStore(log *logger.Logger, index repos.StepContentRepo, bucket gcp.ContentBucket, folder string, metrics *observability.Metrics) ContentStore {
	return &indexedContentStore{
		log:     log.With("service", "ContentStore"),
		index:   index,
		bucket:  bucket,
		folder:  strings.TrimSpace(folder),
		metrics: metrics,
	}
}

func (s *indexedContentStore) Get(ctx context.Context, key tutorial.ContentKey) (string, error) {
	row, err := s.index.GetByKey(dbctx.Context{Ctx: ctx}, key.String())
	if err != nil {
		s.metrics.IncContentLookup("store", "error")
		return "", fmt.Errorf("lookup step index %s: %w", key, err)
	}
	if row == nil || strings.TrimSpace(row.Object) == "" {
		s.metrics.IncContentLookup("store", "not_found")
		return "", fmt.Errorf("%w: no index entry for %s", ErrContentNotFound, key)
	}
	object := gcp.ObjectPath(s.folder, row.Object)
	text, err := s.bucket.ReadText(ctx, object)
	if errors.Is(err, gcp.ErrObjectNotFound) {
		s.metrics.IncContentLookup("store", "not_found")
		return "", fmt.Errorf("%w: %s (%s)", ErrContentNotFound, key, object)
	}
	if err != nil {
		s.metrics.IncContentLookup("store", "error")
		return "", fmt.Errorf("read %s: %w", object, err)
	}
	s.metrics.IncContentLookup("store", "hit")
	return text, nil
}

type cachedContentStore struct {
	log       *logger.Logger
	cache     redis.TextCache
	inner     ContentStore
	namespace string
	ttl       time.Duration
	metrics   *observability.Metrics
}

// ContentCacheNamespace scopes cached text to one deployment, so tutorials
// sharing a redis never read each other's steps.
func ContentCacheNamespace(tutorialName, bucket, folder string) string {
	parts := []string{
		strings.TrimSpace(tutorialName),
		strings.TrimSpace(bucket),
		strings.Trim(strings.TrimSpace(folder), "/"),
	}
	return strings.Join(parts, ":")
}

// NewCachedContentStore puts a read-through cache in front of inner. Misses
// are not cached and cache failures fall through to inner.
func NewCachedContentStore(log *logger.Logger, cache redis.TextCache, inner ContentStore, namespace string, ttl time.Duration, metrics *observability.Metrics) ContentStore {
	if cache == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cachedContentStore{
		log:       log.With("service", "CachedContentStore", "namespace", namespace),
		cache:     cache,
		inner:     inner,
		namespace: namespace,
		ttl:       ttl,
		metrics:   metrics,
	}
}

func (s *cachedContentStore) cacheKey(key tutorial.ContentKey) string {
	if s.namespace == "" {
		return "content:" + key.String()
	}
	return "content:" + s.namespace + ":" + key.String()
}

func (s *cachedContentStore) Get(ctx context.Context, key tutorial.ContentKey) (string, error) {
	val, ok, err := s.cache.Get(ctx, s.cacheKey(key))
	switch {
	case err != nil:
		s.metrics.IncContentLookup("cache", "error")
		s.log.Warn("content cache read failed", "key", key.String(), "error", err)
	case ok:
		s.metrics.IncContentLookup("cache", "hit")
		return val, nil
	default:
		s.metrics.IncContentLookup("cache", "miss")
	}

	text, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, s.cacheKey(key), text, s.ttl); err != nil {
		s.log.Warn("content cache write failed", "key", key.String(), "error", err)
	}
	return text, nil
}
