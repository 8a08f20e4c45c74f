package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/sse"
)

type EventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewEventsHandler(log *logger.Logger, hub *sse.Hub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// GET /api/flow/events streams progress and state changes for the caller's
// browser session.
func (h *EventsHandler) Stream(c *gin.Context) {
	sid := middleware.BrowserSessionID(c)
	if sid == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_session", errMissingSession)
		return
	}
	client := h.hub.NewClient()
	defer h.hub.Close(client)
	h.hub.Subscribe(client, sid)
	h.log.Debug("event stream open", "session_id", sid)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
