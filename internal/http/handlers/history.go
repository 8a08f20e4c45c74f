package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/services"
)

type HistoryHandler struct {
	history services.HistoryService
}

func NewHistoryHandler(history services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	entries, err := h.history.List(c.Request.Context(), userID(c))
	if err != nil {
		response.RespondFrom(c, err, "history_failed")
		return
	}
	response.RespondOK(c, gin.H{"analyses": entries})
}

// GET /api/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidID)
		return
	}
	res, err := h.history.Result(c.Request.Context(), userID(c), id)
	if err != nil {
		response.RespondFrom(c, err, "history_failed")
		return
	}
	response.RespondOK(c, gin.H{"id": id, "generatedSignals": res})
}
