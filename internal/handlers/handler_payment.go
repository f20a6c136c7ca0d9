package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/gin-gonic/gin"
)

type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	posthog        *utils.PosthogClientWrapper
}

func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := &paymentHandler{paymentService: paymentService, posthog: posthog}

	// Registered on the group so the static segment wins over /bills/:id.
	rg.GET("/bills/awaiting-payment", h.listAwaitingPayment)

	payments := rg.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.POST("/execute", h.executePayment)
	}
}

// listAwaitingPayment godoc
// @Summary List records awaiting payment
// @Description Bills awaiting payment, filed tax declarations and approved purchase orders, with their total
// @Tags payments
// @Produce  json
// @Success 200 {object} dto.AwaitingPaymentResponse
// @Failure 500 {object} ErrorResponse "Failed to list payable records"
// @Security BearerAuth
// @Router /bills/awaiting-payment [get]
func (h *paymentHandler) listAwaitingPayment(c *gin.Context) {
	records, err := h.paymentService.ListAwaitingPayment(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list payable records")
		return
	}
	c.JSON(http.StatusOK, dto.ToAwaitingPaymentResponse(records))
}

// executePayment godoc
// @Summary Execute a payment batch
// @Description Settles the selected records from one bank account in a single transaction
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.ExecutePaymentRequest true "Selected records and bank account"
// @Success 200 {object} dto.PaymentBatchResponse
// @Failure 400 {object} ErrorResponse "Empty selection or validation error"
// @Failure 404 {object} ErrorResponse "Record or bank account not found"
// @Failure 409 {object} ErrorResponse "Record no longer awaiting payment or concurrent modification"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse "Failed to execute payment"
// @Security BearerAuth
// @Router /payments/execute [post]
func (h *paymentHandler) executePayment(c *gin.Context) {
	var req dto.ExecutePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	batch, err := h.paymentService.ExecutePayment(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to execute payment")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment executed",
		slog.String("receipt_number", batch.ReceiptNumber), slog.String("total", batch.Total.StringFixed(2)))
	middleware.PosthogEvent(c, h.posthog, "payment_executed", map[string]any{
		"records": len(batch.Payments),
		"total":   batch.Total.StringFixed(2),
	})
	c.JSON(http.StatusOK, dto.ToPaymentBatchResponse(batch))
}

// listPayments godoc
// @Summary List executed payments
// @Tags payments
// @Produce  json
// @Param   limit query int false "Maximum number of payments" default(100)
// @Success 200 {array} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Security BearerAuth
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), params.Limit)
	if err != nil {
		handleServiceError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentListResponse(payments))
}
