package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TUTORIAL_CONFIG", "CONTENT_CACHE_TTL", "METRICS_ENABLED", "CORS_ALLOWED_ORIGINS", "WEBHOOK_TOKEN"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(nil)
	if cfg.Port != "8080" {
		t.Fatalf("Port: want=%q got=%q", "8080", cfg.Port)
	}
	if cfg.TutorialConfigPath != "configs/tutorial.yaml" {
		t.Fatalf("TutorialConfigPath: got=%q", cfg.TutorialConfigPath)
	}
	if cfg.ContentCacheTTL != 10*time.Minute {
		t.Fatalf("ContentCacheTTL: got=%s", cfg.ContentCacheTTL)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("MetricsEnabled: want=false")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("CORSOrigins: want empty got=%v", cfg.CORSOrigins)
	}
	if cfg.Otel.ServiceName != "tutorbot" {
		t.Fatalf("Otel.ServiceName: got=%q", cfg.Otel.ServiceName)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTENT_GCS_BUCKET_NAME", "tutor-content")
	t.Setenv("CONTENT_CACHE_TTL", "45")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig(nil)
	if cfg.Port != "9000" || cfg.ContentBucketName != "tutor-content" || cfg.RedisDB != 3 {
		t.Fatalf("LoadConfig: got=%+v", cfg)
	}
	if cfg.ContentCacheTTL != 45*time.Second {
		t.Fatalf("ContentCacheTTL: want=45s got=%s", cfg.ContentCacheTTL)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("MetricsEnabled: want=true")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("CORSOrigins: want=%v got=%v", want, cfg.CORSOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("TB_DOTENV_VALUE=from-file\nTB_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("TB_DOTENV_SET", "from-env")
	t.Setenv("TB_DOTENV_VALUE", "")
	os.Unsetenv("TB_DOTENV_VALUE")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TB_DOTENV_VALUE"); got != "from-file" {
		t.Fatalf("TB_DOTENV_VALUE: want=%q got=%q", "from-file", got)
	}
	if got := os.Getenv("TB_DOTENV_SET"); got != "from-env" {
		t.Fatalf("TB_DOTENV_SET: existing env must win, got=%q", got)
	}

	t.Setenv("DOTENV_PATH", filepath.Join(dir, "missing.env"))
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv missing file: %v", err)
	}
}

func TestListenAddr(t *testing.T) {
	cases := map[string]string{"8080": ":8080", " 9000 ": ":9000", "127.0.0.1:8080": "127.0.0.1:8080"}
	for in, want := range cases {
		if got := listenAddr(in); got != want {
			t.Fatalf("listenAddr(%q): want=%q got=%q", in, want, got)
		}
	}
}
