package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Milo-adonos/SilentView/internal/pkg/ctxutil"
)

const (
	BrowserSessionCookie = "sv_sid"
	headerBrowserSession = "X-Browser-Session"
)

type SessionCookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// AttachRequestContext identifies the browser and records the request data
// every later layer reads. A browser without a valid session cookie gets a
// fresh one.
func AttachRequestContext(cfg SessionCookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := browserSession(c)
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     BrowserSessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		rd := &ctxutil.RequestData{BrowserSessionID: sid, ClientIP: c.ClientIP()}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func browserSession(c *gin.Context) string {
	raw, err := c.Cookie(BrowserSessionCookie)
	if err != nil || raw == "" {
		raw = strings.TrimSpace(c.GetHeader(headerBrowserSession))
	}
	if _, err := uuid.Parse(raw); err != nil {
		return ""
	}
	return raw
}

// BrowserSessionID returns the id attached by AttachRequestContext.
func BrowserSessionID(c *gin.Context) string {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.BrowserSessionID
	}
	return ""
}
