package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/http/response"
)

type ContextsHandler struct{}

func NewContextsHandler() *ContextsHandler { return &ContextsHandler{} }

// GET /api/contexts
func (h *ContextsHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"contexts": contexts.All(),
		"networks": contexts.Networks(),
	})
}
