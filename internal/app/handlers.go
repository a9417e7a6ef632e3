package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/tutorbot-backend/internal/http/handlers"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Webhook  *httpH.WebhookHandler
	Question *httpH.QuestionHandler
	Turn     *httpH.TurnHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Webhook:  httpH.NewWebhookHandler(log, services.Tutor),
		Question: httpH.NewQuestionHandler(log, services.Responses),
		Turn:     httpH.NewTurnHandler(log, services.History),
	}
}
