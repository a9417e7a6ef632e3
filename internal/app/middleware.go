package app

import (
	httpMW "github.com/yungbote/tutorbot-backend/internal/http/middleware"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type Middleware struct {
	WebhookAuth *httpMW.WebhookAuth
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	auth := httpMW.NewWebhookAuth(log, cfg.WebhookToken)
	if !auth.Enabled() {
		log.Warn("WEBHOOK_TOKEN not set; webhooks accept unauthenticated calls")
	}
	return Middleware{WebhookAuth: auth}
}
