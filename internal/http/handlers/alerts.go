package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/services"
)

type AlertsHandler struct {
	alerts services.AlertService
}

func NewAlertsHandler(alerts services.AlertService) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

// GET /api/alerts
func (h *AlertsHandler) List(c *gin.Context) {
	list, err := h.alerts.List(c.Request.Context(), userID(c))
	if err != nil {
		response.RespondFrom(c, err, "alerts_failed")
		return
	}
	response.RespondOK(c, gin.H{"alerts": list, "limit": services.MaxAlerts})
}

// POST /api/alerts
func (h *AlertsHandler) Add(c *gin.Context) {
	var req struct {
		TargetUsername string `json:"target_username"`
		SocialNetwork  string `json:"social_network"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	alert, err := h.alerts.Add(c.Request.Context(), userID(c), req.TargetUsername, req.SocialNetwork)
	if err != nil {
		response.RespondFrom(c, err, "alert_add_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// DELETE /api/alerts/:id
func (h *AlertsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidID)
		return
	}
	if err := h.alerts.Delete(c.Request.Context(), userID(c), id); err != nil {
		response.RespondFrom(c, err, "alert_delete_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/alerts/:id/toggle
func (h *AlertsHandler) Toggle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidID)
		return
	}
	active, err := h.alerts.Toggle(c.Request.Context(), userID(c), id)
	if err != nil {
		response.RespondFrom(c, err, "alert_toggle_failed")
		return
	}
	response.RespondOK(c, gin.H{"is_active": active})
}
