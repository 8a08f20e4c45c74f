package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/flow"
	"github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/services"
)

type FlowHandler struct {
	flow services.FlowService
}

func NewFlowHandler(flowService services.FlowService) *FlowHandler {
	return &FlowHandler{flow: flowService}
}

// GET /api/flow
func (h *FlowHandler) Get(c *gin.Context) {
	view, err := h.flow.View(c.Request.Context(), middleware.BrowserSessionID(c))
	if err != nil {
		response.RespondFrom(c, err, "flow_failed")
		return
	}
	response.RespondOK(c, view)
}

func (h *FlowHandler) fire(c *gin.Context, ev flow.Event) {
	view, err := h.flow.Fire(c.Request.Context(), middleware.BrowserSessionID(c), ev)
	if err != nil {
		response.RespondFrom(c, err, "flow_failed")
		return
	}
	response.RespondOK(c, view)
}

// POST /api/flow/network
func (h *FlowHandler) Network(c *gin.Context) {
	var req struct {
		Network string `json:"network"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.NetworkChosen{Network: req.Network})
}

// POST /api/flow/own-handle
func (h *FlowHandler) OwnHandle(c *gin.Context) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.OwnHandleEntered{Handle: req.Handle})
}

// POST /api/flow/target-handle
func (h *FlowHandler) TargetHandle(c *gin.Context) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.TargetHandleEntered{Handle: req.Handle})
}

// POST /api/flow/context
func (h *FlowHandler) Context(c *gin.Context) {
	var req struct {
		Context string `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.ContextChosen{Context: req.Context})
}

// POST /api/flow/answer
func (h *FlowHandler) Answer(c *gin.Context) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.AnswerGiven{Answer: req.Answer})
}

// POST /api/flow/prediction
func (h *FlowHandler) Prediction(c *gin.Context) {
	var req struct {
		Value *int `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.fire(c, flow.PredictionSet{Value: *req.Value})
}

// POST /api/flow/back
func (h *FlowHandler) Back(c *gin.Context) {
	h.fire(c, flow.Back{})
}

// POST /api/flow/reset
func (h *FlowHandler) Reset(c *gin.Context) {
	h.fire(c, flow.Reset{})
}
