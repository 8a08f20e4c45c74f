package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/platform/apierr"
)

func respond(t *testing.T, err error) (int, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondFrom(c, err, "internal")
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env.Error
}

func TestRespondFromMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{pkgerrors.Invalid("Le nom d'utilisateur est requis"), http.StatusBadRequest, "invalid_request", "Le nom d'utilisateur est requis"},
		{pkgerrors.Conflict("Cette alerte existe déjà"), http.StatusConflict, "conflict", "Cette alerte existe déjà"},
		{fmt.Errorf("load: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found", "load: not found"},
		{pkgerrors.ErrPaymentRequired, http.StatusPaymentRequired, "payment_required", "payment required"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal", msgInternal},
	}
	for _, tc := range cases {
		status, body := respond(t, tc.err)
		assert.Equal(t, tc.status, status)
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.msg, body.Message)
		assert.False(t, body.Retryable)
	}
}

func TestRespondFromRetryable(t *testing.T) {
	status, body := respond(t, apierr.Retry(http.StatusBadGateway, "checkout_failed", errors.New("Réessayez")))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.True(t, body.Retryable)
	assert.Equal(t, "Réessayez", body.Message)
}
