package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorbot-backend/internal/http/response"
	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/apierr"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/services"
)

const maxQuestionLimit = 200

type QuestionHandler struct {
	log       *logger.Logger
	responses services.ResponseStore
}

func NewQuestionHandler(log *logger.Logger, responses services.ResponseStore) *QuestionHandler {
	return &QuestionHandler{log: log.With("handler", "QuestionHandler"), responses: responses}
}

type questionListResponse struct {
	Topic     string             `json:"topic"`
	Query     string             `json:"query,omitempty"`
	Questions []tutorial.QAEntry `json:"questions"`
}

type topicListResponse struct {
	Topics []string `json:"topics"`
}

// GET /api/topics
func (h *QuestionHandler) Topics(c *gin.Context) {
	topics, err := h.responses.Topics(c.Request.Context())
	if err != nil {
		h.log.Error("topic list failed", "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "topics_failed", err))
		return
	}
	if topics == nil {
		topics = []string{}
	}
	response.RespondOK(c, topicListResponse{Topics: topics})
}

// GET /api/topics/:tag/questions?q=&limit=
func (h *QuestionHandler) List(c *gin.Context) {
	tag := strings.TrimSpace(c.Param("tag"))
	if tag == "" {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "missing_topic", nil))
		return
	}
	limit := maxQuestionLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_limit", err))
			return
		}
		if n < limit {
			limit = n
		}
	}
	query := strings.TrimSpace(c.Query("q"))
	entries, err := h.responses.Browse(c.Request.Context(), tag, query)
	if err != nil {
		h.log.Error("question browse failed", "topic", tag, "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusInternalServerError, "browse_failed", err))
		return
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	response.RespondOK(c, questionListResponse{Topic: tag, Query: query, Questions: entries})
}
