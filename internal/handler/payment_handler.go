package handler

import (
	"io"
	"net/http"

	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/pagination"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	payments.Use(middleware.RequireRole(model.RoleClient))
	{
		payments.POST("/checkout", h.Checkout)
		payments.GET("/transactions", h.ListTransactions)
	}

	// providers call this unauthenticated; each gateway verifies its own signature
	router.POST("/api/webhooks/:provider", h.Webhook)
}

// Checkout godoc
// @Summary      Start a payment
// @Description  Creates a pending transaction for the shipment and returns the provider redirect URL
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CheckoutRequest  true  "Checkout"
// @Success      201      {object}  response.Response{data=service.CheckoutResponse}
// @Failure      502      {object}  response.Response
// @Router       /api/payments/checkout [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.paymentService.CreateCheckout(c.Request.Context(), v.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// ListTransactions godoc
// @Summary      List my transactions
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Page}
// @Router       /api/payments/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	items, total, err := h.paymentService.ListTransactions(c.Request.Context(), v.ID, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessPage(http.StatusOK, items, total, p))
}

// Webhook godoc
// @Summary      Payment provider webhook
// @Description  Settles the referenced transaction; redelivered notifications are acknowledged without effect
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        provider  path      string  true  "stripe, flutterwave or cinetpay"
// @Success      200       {object}  response.Response{data=service.WebhookResult}
// @Failure      401       {object}  response.Response
// @Router       /api/webhooks/{provider} [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	provider := c.Param("provider")
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "Failed to read request body")
		return
	}

	res, err := h.paymentService.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if err != nil {
		logging.Warn("payment webhook rejected", map[string]interface{}{
			"provider": provider,
			"error":    err,
		})
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
