package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/tutorbot-backend/internal/data/db"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/envutil"
	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

const serviceName = "tutorbot"

type Config struct {
	Env     string
	Version string
	Port    string

	TutorialConfigPath string
	// ContentFolder overrides the tutorial config's folder when set.
	ContentFolder string

	ContentBucketName   string
	ObjectStorageMode   string
	StorageEmulatorHost string
	GCPCredentials      string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ContentCacheTTL time.Duration

	DB db.Config

	MetricsEnabled bool
	MetricsAddr    string

	WebhookToken string
	CORSOrigins  []string

	Otel observability.OtelConfig
}

// LoadDotEnv reads DOTENV_PATH (default .env) into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv() error {
	path := envutil.String("DOTENV_PATH", ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("APP_ENV", "development")
	version := envutil.String("APP_VERSION", "dev")
	cfg := Config{
		Env:                 env,
		Version:             version,
		Port:                envutil.String("PORT", "8080"),
		TutorialConfigPath:  envutil.String("TUTORIAL_CONFIG", "configs/tutorial.yaml"),
		ContentFolder:       envutil.String("CONTENT_FOLDER", ""),
		ContentBucketName:   envutil.String("CONTENT_GCS_BUCKET_NAME", ""),
		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		GCPCredentials:      gcp.CredentialsFromEnv(),
		RedisAddr:           envutil.String("REDIS_ADDR", ""),
		RedisPassword:       envutil.String("REDIS_PASSWORD", ""),
		RedisDB:             envutil.Int("REDIS_DB", 0),
		ContentCacheTTL:     envutil.Duration("CONTENT_CACHE_TTL", 10*time.Minute),
		DB:                  db.ConfigFromEnv(),
		MetricsEnabled:      observability.Enabled(),
		MetricsAddr:         envutil.String("METRICS_ADDR", ":9090"),
		WebhookToken:        envutil.String("WEBHOOK_TOKEN", ""),
		CORSOrigins:         splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Otel:                observability.OtelConfigFromEnv(serviceName, env, version),
	}
	if log != nil {
		log.Info("Config loaded",
			"env", cfg.Env,
			"port", cfg.Port,
			"tutorial_config", cfg.TutorialConfigPath,
			"db_driver", cfg.DB.Driver,
			"bucket", cfg.ContentBucketName,
			"redis_cache", cfg.RedisAddr != "",
			"metrics", cfg.MetricsEnabled,
			"otel", cfg.Otel.Enabled,
			"webhook_auth", cfg.WebhookToken != "",
		)
	}
	return cfg
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
