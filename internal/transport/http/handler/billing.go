package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/billing"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/response"
)

const maxWebhookBody = 1 << 20

type BillingHandler struct {
	billingService *app.BillingService
}

type CheckoutRequest struct {
	PriceID string `json:"price_id" binding:"max=128"`
}

func NewBillingHandler(billingService *app.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	url, err := h.billingService.CreateCheckout(c.Request.Context(), userID, req.PriceID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create checkout failed")
		}
		return
	}

	response.OK(c, gin.H{"url": url})
}

// Webhook receives billing provider deliveries. The route is outside the
// auth group; authenticity comes from the Standard Webhooks signature
// over the raw body.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read payload failed")
		return
	}

	err = h.billingService.HandleWebhook(
		payload,
		c.GetHeader("Webhook-Id"),
		c.GetHeader("Webhook-Timestamp"),
		c.GetHeader("Webhook-Signature"),
	)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingSignature), errors.Is(err, billing.ErrBadSignature):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid signature")
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unknown user")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "process webhook failed")
		}
		return
	}

	response.OK(c, gin.H{"received": true})
}
