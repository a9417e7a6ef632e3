package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorbot-backend/internal/http/response"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial/dialogflow"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial/lex"
	"github.com/yungbote/tutorbot-backend/internal/platform/apierr"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/services"
)

// WebhookHandler serves the dialogue platform fulfilment calls.
type WebhookHandler struct {
	log   *logger.Logger
	tutor services.TutorService
}

func NewWebhookHandler(log *logger.Logger, tutor services.TutorService) *WebhookHandler {
	return &WebhookHandler{log: log.With("handler", "WebhookHandler"), tutor: tutor}
}

// POST /webhooks/lex
func (h *WebhookHandler) Lex(c *gin.Context) {
	var ev lex.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	reply, ok := h.handle(c, lex.Decode(h.tutor.Intents(), ev))
	if !ok {
		return
	}
	response.RespondOK(c, lex.Encode(ev, reply))
}

// POST /webhooks/dialogflow
func (h *WebhookHandler) Dialogflow(c *gin.Context) {
	var req dialogflow.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	reply, ok := h.handle(c, dialogflow.Decode(h.tutor.Intents(), req))
	if !ok {
		return
	}
	response.RespondOK(c, dialogflow.Encode(req, reply))
}

func (h *WebhookHandler) handle(c *gin.Context, turn tutorial.Turn) (tutorial.Reply, bool) {
	reply, err := h.tutor.Handle(c.Request.Context(), turn)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, c.Request.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		h.log.Warn("turn not handled", "platform", turn.Platform, "session_id", turn.SessionID, "error", err)
		response.RespondAPIError(c, apierr.New(status, "turn_failed", err))
		return tutorial.Reply{}, false
	}
	return reply, true
}
