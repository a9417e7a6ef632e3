package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/platform/envutil"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

// Metrics is the service's Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	tutorTurns     *CounterVec
	tutorLatency   *HistogramVec
	contentLookups *CounterVec
	matchResults   *CounterVec
	matchScore     *HistogramVec
	turnLogErrors  *Counter

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
}

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// New builds an empty registry.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("tb_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"tb_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("tb_api_inflight_requests", "In-flight API requests."),
		tutorTurns: NewCounterVec("tb_tutor_turns_total", "Tutor turns by platform/intent/outcome.", []string{"platform", "intent", "outcome"}),
		tutorLatency: NewHistogramVec(
			"tb_tutor_turn_duration_seconds",
			"Tutor turn handling time in seconds by platform/intent.",
			[]string{"platform", "intent"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		contentLookups: NewCounterVec("tb_content_lookups_total", "Content lookups by source/result.", []string{"source", "result"}),
		matchResults:   NewCounterVec("tb_match_results_total", "Question matches by topic/result.", []string{"topic", "result"}),
		matchScore: NewHistogramVec(
			"tb_match_score",
			"Best-match similarity scores.",
			[]string{"result"},
			[]float64{0, 0.1, 0.2, 0.34, 0.5, 0.67, 0.8, 1},
		),
		turnLogErrors:  NewCounter("tb_turn_log_errors_total", "Turn log writes that failed."),
		dbStats:        NewGaugeVec("tb_db_stats", "database/sql pool stats.", []string{"stat"}),
		redisUp:        NewGauge("tb_redis_up", "1 when the last redis ping succeeded."),
		redisPing:      NewGauge("tb_redis_ping_seconds", "Last redis ping latency in seconds."),
		scrapeInterval: envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.tutorTurns, m.tutorLatency, m.contentLookups, m.matchResults, m.matchScore, m.turnLogErrors,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.Inc(method, route, code)
	m.apiLatency.Observe(dur.Seconds(), method, route, code)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveTurn(platform, intent, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.tutorTurns.Inc(platform, intent, outcome)
	m.tutorLatency.Observe(dur.Seconds(), platform, intent)
}

// TurnCount is the number of turns recorded for one label set.
func (m *Metrics) TurnCount(platform, intent, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.tutorTurns.Value(platform, intent, outcome)
}

// IncContentLookup records one content read. source is "cache" or "store";
// result is hit, miss, not_found or error.
func (m *Metrics) IncContentLookup(source, result string) {
	if m == nil {
		return
	}
	m.contentLookups.Inc(source, result)
}

func (m *Metrics) ContentLookupCount(source, result string) float64 {
	if m == nil {
		return 0
	}
	return m.contentLookups.Value(source, result)
}

func (m *Metrics) ObserveMatch(topic string, found bool, score float64) {
	if m == nil {
		return
	}
	result := "empty"
	if found {
		result = "found"
	}
	m.matchResults.Inc(topic, result)
	if found {
		m.matchScore.Observe(score, result)
	}
}

func (m *Metrics) IncTurnLogError() {
	if m == nil {
		return
	}
	m.turnLogErrors.Inc()
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings redis on every scrape interval with its own client.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, opts *redis.Options) {
	if m == nil || opts == nil || strings.TrimSpace(opts.Addr) == "" {
		return
	}
	rdb := redis.NewClient(opts)
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
