package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorbot-backend/internal/domain"
	"github.com/yungbote/tutorbot-backend/internal/http/response"
	"github.com/yungbote/tutorbot-backend/internal/platform/apierr"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/services"
)

const maxTurnLimit = 500

type TurnHandler struct {
	log     *logger.Logger
	history services.TurnHistory
}

func NewTurnHandler(log *logger.Logger, history services.TurnHistory) *TurnHandler {
	return &TurnHandler{log: log.With("handler", "TurnHandler"), history: history}
}

type sessionTurnsResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []*domain.TutorTurn `json:"turns"`
}

// GET /api/admin/sessions/:id/turns?limit=
func (h *TurnHandler) Session(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "missing_session", nil))
		return
	}
	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_limit", err))
			return
		}
		limit = min(n, maxTurnLimit)
	}
	turns, err := h.history.Session(c.Request.Context(), id, limit)
	if err != nil {
		h.log.Error("turn history failed", "session_id", id, "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "history_failed", err))
		return
	}
	response.RespondOK(c, sessionTurnsResponse{SessionID: id, Turns: turns})
}

type outcomeCountsResponse struct {
	Platform string           `json:"platform,omitempty"`
	Outcomes map[string]int64 `json:"outcomes"`
}

// GET /api/admin/turns/outcomes?platform=
func (h *TurnHandler) Outcomes(c *gin.Context) {
	platform := strings.TrimSpace(c.Query("platform"))
	counts, err := h.history.Outcomes(c.Request.Context(), platform)
	if err != nil {
		h.log.Error("outcome counts failed", "platform", platform, "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "history_failed", err))
		return
	}
	response.RespondOK(c, outcomeCountsResponse{Platform: platform, Outcomes: counts})
}
