package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/data/db"
	"github.com/yungbote/tutorbot-backend/internal/http"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/envutil"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Tutorial tutorial.Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	tcfg, err := tutorial.LoadConfig(cfg.TutorialConfigPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load tutorial config: %w", err)
	}
	log.Info("Tutorial loaded",
		"name", tcfg.Name,
		"fetch_mode", tcfg.FetchMode,
		"steps", len(tcfg.Curriculum),
		"topics", len(tcfg.Intents.Topics),
	)

	theDB, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.New()
	}
	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	clients, err := wireClients(log, cfg)
	if err != nil {
		closeDB(theDB)
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(log, cfg, tcfg, clients, reposet, metrics)
	if err != nil {
		clients.Close()
		closeDB(theDB)
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Tutorial:     tcfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background collectors and the metrics endpoint.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Cfg.RedisAddr != "" {
			a.Metrics.StartRedisCollector(ctx, a.Log, &goredis.Options{
				Addr:     a.Cfg.RedisAddr,
				Password: a.Cfg.RedisPassword,
				DB:       a.Cfg.RedisDB,
			})
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := listenAddr(a.Cfg.Port)
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(addr)
}

func newLogger() (*logger.Logger, error) {
	return logger.NewWithOptions(logger.Options{
		Mode:     envutil.String("LOG_MODE", "development"),
		Level:    envutil.String("LOG_LEVEL", ""),
		NoRedact: envutil.Bool("LOG_NO_REDACT", false),
		HashSalt: envutil.String("LOG_HASH_SALT", ""),
	})
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		closeDB(theDB)
		return nil, fmt.Errorf("db automigrate: %w", err)
	}
	return theDB, nil
}

func closeDB(theDB *gorm.DB) {
	if theDB == nil {
		return
	}
	if sqlDB, err := theDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func listenAddr(port string) string {
	port = strings.TrimSpace(port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	closeDB(a.DB)
	if a.Log != nil {
		a.Log.Sync()
	}
}
