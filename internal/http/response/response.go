package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/platform/apierr"
)

const msgInternal = "Une erreur est survenue. Veuillez réessayer."

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondFrom maps a service error onto the envelope. Localized validation
// messages are shown as they are; unexpected server errors are not.
func RespondFrom(c *gin.Context, err error, fallbackCode string) {
	ae := apierr.From(err, fallbackCode)
	msg := ae.Error()
	var v *pkgerrors.Validation
	if ae.Status >= http.StatusInternalServerError && !ae.Retryable && !errors.As(err, &v) {
		_ = c.Error(err)
		msg = msgInternal
	}
	c.JSON(ae.Status, ErrorEnvelope{Error: APIError{Message: msg, Code: ae.Code, Retryable: ae.Retryable}})
}

// RespondRedirect is the 402 sent when the visitor must go through payment.
func RespondRedirect(c *gin.Context, status int, code, message, to string) {
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code, Redirect: to}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
