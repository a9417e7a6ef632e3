package app

import (
	"fmt"

	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/platform/redis"
)

type Clients struct {
	Bucket gcp.ContentBucket
	// TextCache is nil when REDIS_ADDR is unset.
	TextCache redis.TextCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveContentBucket(log, cfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init content bucket: %w", err)
	}

	var cache redis.TextCache
	if cfg.RedisAddr != "" {
		c, err := redis.NewTextCache(log, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   serviceName,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis text cache: %w", err)
		}
		cache = c
	}

	return Clients{Bucket: bucket, TextCache: cache}, nil
}

func (c Clients) Close() {
	if c.TextCache != nil {
		_ = c.TextCache.Close()
	}
}
