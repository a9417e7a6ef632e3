package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorbot-backend/internal/http/response"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

const headerWebhookToken = "X-Webhook-Token"

var errUnauthorized = errors.New("missing or invalid webhook token")

// WebhookAuth checks the shared secret dialogue platforms send with each
// fulfilment call. With an empty token every request passes.
type WebhookAuth struct {
	log   *logger.Logger
	token []byte
}

func NewWebhookAuth(log *logger.Logger, token string) *WebhookAuth {
	return &WebhookAuth{
		log:   log.With("middleware", "WebhookAuth"),
		token: []byte(strings.TrimSpace(token)),
	}
}

func (w *WebhookAuth) Enabled() bool { return w != nil && len(w.token) > 0 }

func (w *WebhookAuth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !w.Enabled() {
			c.Next()
			return
		}
		got := extractWebhookToken(c)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), w.token) != 1 {
			w.log.Warn("webhook rejected", "path", c.FullPath(), "client_ip", c.ClientIP())
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
			return
		}
		c.Next()
	}
}

// extractWebhookToken accepts the dedicated header, a bearer token, or the
// password of HTTP basic auth (Dialogflow's webhook auth option).
func extractWebhookToken(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(headerWebhookToken)); v != "" {
		return v
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if _, pass, ok := c.Request.BasicAuth(); ok {
		return pass
	}
	return ""
}
