package app

import (
	"github.com/yungbote/tutorbot-backend/internal/http"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	otelService := ""
	if cfg.Otel.Enabled {
		otelService = serviceName
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     otelService,
		CORSOrigins:     cfg.CORSOrigins,
		WebhookAuth:     middleware.WebhookAuth,
		WebhookHandler:  handlers.Webhook,
		QuestionHandler: handlers.Question,
		TurnHandler:     handlers.Turn,
		HealthHandler:   handlers.Health,
	})
}
