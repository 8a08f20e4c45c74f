package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/pkg/ctxutil"
	"github.com/Milo-adonos/SilentView/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) respondSession(c *gin.Context, sess *services.AuthSession) {
	response.RespondOK(c, gin.H{
		"access_token": sess.AccessToken,
		"expires_at":   sess.ExpiresAt,
		"expires_in":   int(ah.authService.AccessTTL().Seconds()),
		"user":         sess.User,
	})
}

// POST /api/auth/signup
func (ah *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sess, err := ah.authService.SignUp(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		response.RespondFrom(c, err, "signup_failed")
		return
	}
	ah.respondSession(c, sess)
}

// POST /api/auth/signin
func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sess, err := ah.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondFrom(c, err, "signin_failed")
		return
	}
	ah.respondSession(c, sess)
}

// POST /api/auth/signout
func (ah *AuthHandler) SignOut(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingSession)
		return
	}
	if err := ah.authService.SignOut(c.Request.Context(), rd.TokenString); err != nil {
		response.RespondFrom(c, err, "signout_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/auth/session
func (ah *AuthHandler) Session(c *gin.Context) {
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingSession)
		return
	}
	sess, err := ah.authService.CurrentSession(ctx, rd.TokenString)
	if err != nil {
		response.RespondFrom(c, err, "session_failed")
		return
	}
	premium, err := ah.authService.IsPremium(ctx, sess.User.ID)
	if err != nil {
		response.RespondFrom(c, err, "session_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"user":       sess.User,
		"expires_at": sess.ExpiresAt,
		"premium":    premium,
	})
}
