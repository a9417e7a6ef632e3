package db

import (
	"strings"
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/tb.db")
	t.Setenv("POSTGRES_NAME", "")
	t.Setenv("DB_SLOW_THRESHOLD", "250ms")

	cfg := ConfigFromEnv()
	if cfg.Driver != DriverSQLite || cfg.SQLitePath != "/tmp/tb.db" {
		t.Fatalf("sqlite config: got=%+v", cfg)
	}
	if cfg.PostgresName != "tutorbot" {
		t.Fatalf("postgres name default: got=%q", cfg.PostgresName)
	}
	if cfg.SlowThreshold != 250*time.Millisecond {
		t.Fatalf("slow threshold: got=%s", cfg.SlowThreshold)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresUser: "u", PostgresPassword: "p", PostgresHost: "h", PostgresPort: "5432", PostgresName: "n", PostgresSSLMode: "require"}
	if got := cfg.postgresDSN(); got != "postgres://u:p@h:5432/n?sslmode=require" {
		t.Fatalf("dsn: got=%q", got)
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := dialector(Config{Driver: "mysql"})
	if err == nil || !strings.Contains(err.Error(), "mysql") {
		t.Fatalf("dialector: want unsupported driver error got=%v", err)
	}
}
