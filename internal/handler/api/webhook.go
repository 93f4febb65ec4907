package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	resdto "court-booking/internal/handler/dto/response"
	"court-booking/internal/handler/httperr"
	"court-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 256 << 10
)

type WebhookHandler struct {
	cmds commands.WebhookCommands
}

func NewWebhookHandler(cmds commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Payment gateway notification
// @Description Signed event from the payment gateway. Any 2xx acknowledges the delivery.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Gateway signature"
// @Success 200 {object} resdto.WebhookResponse
// @Failure 400 {object} httperr.Response
// @Failure 413 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /webhooks/payments [post]
func (h *WebhookHandler) PaymentNotification(c *gin.Context) {
	// The signature covers the exact bytes, so the body is read raw and
	// never truncated.
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.AbortWithError(c, http.StatusRequestEntityTooLarge, err, "Payload too large", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable body", nil)
		return
	}

	outcome, err := h.cmds.HandleNotification(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		abortWithUseCaseError(c, err, "payment notification")
		return
	}

	slog.Debug("payment notification acknowledged", "outcome", string(outcome))
	c.JSON(http.StatusOK, resdto.WebhookResponse{Received: true, Outcome: string(outcome)})
}
