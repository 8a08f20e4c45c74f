// Package handlers binds the SilentView HTTP API onto the services.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Milo-adonos/SilentView/internal/pkg/ctxutil"
)

var (
	errMissingSession = errors.New("missing browser session")
	errInvalidID      = errors.New("invalid id")
)

func userID(c *gin.Context) uuid.UUID {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}
