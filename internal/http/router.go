package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tutorbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutorbot-backend/internal/http/middleware"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial/dialogflow"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial/lex"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	WebhookAuth *httpMW.WebhookAuth

	WebhookHandler  *httpH.WebhookHandler
	QuestionHandler *httpH.QuestionHandler
	TurnHandler     *httpH.TurnHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Dialogue platform fulfilment
	if cfg.WebhookHandler != nil {
		hooks := r.Group("/webhooks")
		hooks.Use(cfg.WebhookAuth.Require())
		hooks.POST("/lex", httpMW.TagPlatform(lex.Platform), cfg.WebhookHandler.Lex)
		hooks.POST("/dialogflow", httpMW.TagPlatform(dialogflow.Platform), cfg.WebhookHandler.Dialogflow)
	}

	api := r.Group("/api")
	api.Use(httpMW.CORS(cfg.CORSOrigins))
	{
		// Question bank
		if cfg.QuestionHandler != nil {
			api.GET("/topics", cfg.QuestionHandler.Topics)
			api.GET("/topics/:tag/questions", cfg.QuestionHandler.List)
		}

		// Turn log, same secret as the webhooks
		if cfg.TurnHandler != nil {
			admin := api.Group("/admin")
			admin.Use(cfg.WebhookAuth.Require())
			admin.GET("/sessions/:id/turns", cfg.TurnHandler.Session)
			admin.GET("/turns/outcomes", cfg.TurnHandler.Outcomes)
		}
	}

	return r
}
