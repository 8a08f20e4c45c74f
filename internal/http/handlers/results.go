package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Milo-adonos/SilentView/internal/http/middleware"
	"github.com/Milo-adonos/SilentView/internal/http/response"
	"github.com/Milo-adonos/SilentView/internal/payment"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/services"
)

const msgUnlockRequiresPayment = "Un paiement est nécessaire pour débloquer les résultats"

type ResultsHandler struct {
	log  *logger.Logger
	flow services.FlowService
}

func NewResultsHandler(log *logger.Logger, flowService services.FlowService) *ResultsHandler {
	return &ResultsHandler{log: log.With("handler", "ResultsHandler"), flow: flowService}
}

func respondSession(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNoSession) {
		response.RespondError(c, http.StatusNotFound, "no_session", err)
		return
	}
	response.RespondFrom(c, err, "results_failed")
}

// GET /api/results/locked
func (h *ResultsHandler) Locked(c *gin.Context) {
	view, err := h.flow.Locked(c.Request.Context(), middleware.BrowserSessionID(c))
	if err != nil {
		respondSession(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/results/unlocked
//
// A payment return (payment=success|cancelled) is recorded first and the
// caller is sent back to the same URL without the return parameters.
func (h *ResultsHandler) Unlocked(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.BrowserSessionID(c)

	q := c.Request.URL.Query()
	if payment.HasReturnParams(q) {
		ret, ok := payment.ParseReturn(q)
		if ok && ret.Status == payment.ReturnCancelled {
			response.RespondRedirect(c, http.StatusPaymentRequired, "payment_cancelled", services.MsgPaymentCancelled, services.PaymentPage)
			return
		}
		if ok {
			if err := h.flow.ConfirmPaymentReturn(ctx, sid, ret); err != nil {
				respondSession(c, err)
				return
			}
		}
		c.Redirect(http.StatusSeeOther, payment.StripReturn(c.Request.URL).RequestURI())
		return
	}

	view, err := h.flow.Unlock(ctx, sid)
	if errors.Is(err, pkgerrors.ErrPaymentRequired) {
		msg := msgUnlockRequiresPayment
		if userID(c) == uuid.Nil {
			msg = services.MsgLoginRequired
		}
		response.RespondRedirect(c, http.StatusPaymentRequired, "payment_required", msg, services.PaymentPage)
		return
	}
	if err != nil {
		respondSession(c, err)
		return
	}
	response.RespondOK(c, view)
}
