package api

import (
	"log/slog"
	"net/http"

	"court-booking/internal/handler/httperr"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target error
	status int
	code   httperr.Code
	msg    string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{errs.ErrInvalidSlot, http.StatusBadRequest, httperr.CodeInvalidSlot, "Invalid time slot"},
	{errs.ErrInvalidTransition, http.StatusBadRequest, httperr.CodeInvalidTransition, "Invalid status transition"},
	{errs.ErrInvalidSignature, http.StatusBadRequest, httperr.CodeInvalidSignature, "Invalid signature"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, httperr.CodeInvalidRequest, "Invalid cursor"},
	{errs.ErrForbidden, http.StatusForbidden, httperr.CodeForbidden, "Forbidden"},
	{errs.ErrReservationNotFound, http.StatusNotFound, httperr.CodeNotFound, "Reservation not found"},
	{errs.ErrResourceNotFound, http.StatusNotFound, httperr.CodeNotFound, "Resource not found"},
	{errs.ErrReservationConflict, http.StatusConflict, httperr.CodeSlotTaken, "Slot already reserved"},
	{errs.ErrAlreadyTerminal, http.StatusConflict, httperr.CodeAlreadyFinal, "Reservation already finalized"},
	{errs.ErrIntentMismatch, http.StatusConflict, httperr.CodeIntentMismatch, "Payment intent does not match reservation"},
	{errs.ErrPaymentNotSucceeded, http.StatusConflict, httperr.CodePaymentPending, "Payment has not succeeded"},
	{errs.ErrIdempotencyInProgress, http.StatusConflict, httperr.CodeRequestInFlight, "Reservation request is currently being processed"},
	{errs.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, httperr.CodeIdempotencyMismatch, "Idempotency key reused with a different request"},
	{errs.ErrGateway, http.StatusBadGateway, httperr.CodeGatewayUnavailable, "Payment gateway unavailable"},
}

func statusFor(err error) (int, httperr.Code, string) {
	for _, m := range errorMappings {
		if errs.Is(err, m.target) {
			return m.status, m.code, m.msg
		}
	}
	return http.StatusInternalServerError, httperr.CodeInternal, "Internal server error"
}

func abortWithUseCaseError(c *gin.Context, err error, op string) {
	status, code, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), op+" failed", "error", err.Error(), "path", c.Request.URL.Path)
		httperr.AbortWithCode(c, status, code, err, msg)
		return
	}

	// Only hints are client-safe; the wrapped message may name internals.
	var detail any
	if hints := errs.Hints(err); len(hints) > 0 {
		detail = gin.H{"hints": hints}
	}
	httperr.AbortWithDetail(c, status, code, err, msg, detail)
}
