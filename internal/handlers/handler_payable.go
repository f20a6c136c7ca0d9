package handlers

import (
	"net/http"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
)

// payableHandler serves the records that end up in the awaiting-payment view:
// vendor bills, tax declarations and purchase orders.
type payableHandler struct {
	billService  portssvc.BillSvcFacade
	taxService   portssvc.TaxSvcFacade
	orderService portssvc.PurchaseOrderSvcFacade
}

func registerPayableRoutes(rg *gin.RouterGroup, bills portssvc.BillSvcFacade, tax portssvc.TaxSvcFacade, orders portssvc.PurchaseOrderSvcFacade) {
	h := &payableHandler{billService: bills, taxService: tax, orderService: orders}

	billRoutes := rg.Group("/bills")
	{
		billRoutes.POST("", h.createBill)
		billRoutes.GET("", h.listBills)
		billRoutes.GET("/:id", h.getBill)
		billRoutes.PUT("/:id", h.updateBill)
		billRoutes.DELETE("/:id", h.deleteBill)
	}

	taxRoutes := rg.Group("/tax-declarations")
	{
		taxRoutes.POST("/calculate", h.calculateTax)
		taxRoutes.POST("", h.createDeclaration)
		taxRoutes.GET("", h.listDeclarations)
		taxRoutes.GET("/:id", h.getDeclaration)
		taxRoutes.PUT("/:id", h.updateDeclaration)
		taxRoutes.DELETE("/:id", h.deleteDeclaration)
		taxRoutes.POST("/:id/submit", h.submitDeclaration)
	}

	orderRoutes := rg.Group("/purchase-orders")
	{
		orderRoutes.POST("", h.createOrder)
		orderRoutes.GET("", h.listOrders)
		orderRoutes.GET("/:id", h.getOrder)
		orderRoutes.PUT("/:id", h.updateOrder)
		orderRoutes.DELETE("/:id", h.deleteOrder)
	}
}

// --- Bills ---

// createBill godoc
// @Summary Create a vendor bill
// @Description The bill number is generated when omitted. New bills default to PENDING_REVIEW.
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   bill body dto.CreateBillRequest true "Bill details"
// @Success 201 {object} dto.BillResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Vendor or purchase order not found"
// @Security BearerAuth
// @Router /bills [post]
func (h *payableHandler) createBill(c *gin.Context) {
	var req dto.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create bill")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBillResponse(bill))
}

// listBills godoc
// @Summary List bills
// @Tags bills
// @Produce  json
// @Param   status query string false "PENDING_REVIEW, AWAITING_PAYMENT or PAID"
// @Success 200 {array} dto.BillResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Security BearerAuth
// @Router /bills [get]
func (h *payableHandler) listBills(c *gin.Context) {
	var params dto.ListBillsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}
	var status *domain.BillStatus
	if params.Status != "" {
		s := domain.BillStatus(params.Status)
		status = &s
	}

	bills, err := h.billService.ListBills(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, err, "Failed to list bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillListResponse(bills))
}

// getBill godoc
// @Summary Get a bill
// @Tags bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 404 {object} ErrorResponse "Bill not found"
// @Security BearerAuth
// @Router /bills/{id} [get]
func (h *payableHandler) getBill(c *gin.Context) {
	bill, err := h.billService.GetBillByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// updateBill godoc
// @Summary Update a bill
// @Description Paid bills cannot be edited and no bill can be marked PAID here.
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   id path string true "Bill ID"
// @Param   bill body dto.UpdateBillRequest true "Fields to update"
// @Success 200 {object} dto.BillResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Bill not found"
// @Failure 409 {object} ErrorResponse "Bill is paid or was modified concurrently"
// @Security BearerAuth
// @Router /bills/{id} [put]
func (h *payableHandler) updateBill(c *gin.Context) {
	var req dto.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// deleteBill godoc
// @Summary Delete a bill
// @Tags bills
// @Param   id path string true "Bill ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Bill not found"
// @Failure 409 {object} ErrorResponse "Bill is paid"
// @Security BearerAuth
// @Router /bills/{id} [delete]
func (h *payableHandler) deleteBill(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.billService.DeleteBill(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete bill")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tax declarations ---

// calculateTax godoc
// @Summary Calculate a tax declaration
// @Description Derives the declaration figures from posted ledger activity in the period. Nothing is stored.
// @Tags tax-declarations
// @Accept  json
// @Produce  json
// @Param   calculation body dto.CalculateTaxRequest true "Period, tax type and rate"
// @Success 200 {object} domain.TaxCalculation
// @Failure 400 {object} ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /tax-declarations/calculate [post]
func (h *payableHandler) calculateTax(c *gin.Context) {
	var req dto.CalculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}

	calc, err := h.taxService.CalculateTax(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to calculate tax")
		return
	}
	c.JSON(http.StatusOK, calc)
}

// createDeclaration godoc
// @Summary Create a tax declaration
// @Tags tax-declarations
// @Accept  json
// @Produce  json
// @Param   declaration body dto.CreateTaxDeclarationRequest true "Declaration"
// @Success 201 {object} dto.TaxDeclarationResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /tax-declarations [post]
func (h *payableHandler) createDeclaration(c *gin.Context) {
	var req dto.CreateTaxDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	decl, err := h.taxService.CreateDeclaration(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create tax declaration")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaxDeclarationResponse(decl))
}

// listDeclarations godoc
// @Summary List tax declarations
// @Tags tax-declarations
// @Produce  json
// @Param   status query string false "PENDING, SUCCESS, FAILED or PAID"
// @Success 200 {array} dto.TaxDeclarationResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Security BearerAuth
// @Router /tax-declarations [get]
func (h *payableHandler) listDeclarations(c *gin.Context) {
	var params dto.ListTaxDeclarationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}
	var status *domain.TaxStatus
	if params.Status != "" {
		s := domain.TaxStatus(params.Status)
		status = &s
	}

	decls, err := h.taxService.ListDeclarations(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, err, "Failed to list tax declarations")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxDeclarationListResponse(decls))
}

// getDeclaration godoc
// @Summary Get a tax declaration
// @Tags tax-declarations
// @Produce  json
// @Param   id path string true "Declaration ID"
// @Success 200 {object} dto.TaxDeclarationResponse
// @Failure 404 {object} ErrorResponse "Declaration not found"
// @Security BearerAuth
// @Router /tax-declarations/{id} [get]
func (h *payableHandler) getDeclaration(c *gin.Context) {
	decl, err := h.taxService.GetDeclarationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve tax declaration")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxDeclarationResponse(decl))
}

// updateDeclaration godoc
// @Summary Update a tax declaration
// @Description Only pending or failed declarations can be edited.
// @Tags tax-declarations
// @Accept  json
// @Produce  json
// @Param   id path string true "Declaration ID"
// @Param   declaration body dto.UpdateTaxDeclarationRequest true "Fields to update"
// @Success 200 {object} dto.TaxDeclarationResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Declaration not found"
// @Failure 409 {object} ErrorResponse "Declaration already filed or paid"
// @Security BearerAuth
// @Router /tax-declarations/{id} [put]
func (h *payableHandler) updateDeclaration(c *gin.Context) {
	var req dto.UpdateTaxDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	decl, err := h.taxService.UpdateDeclaration(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update tax declaration")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxDeclarationResponse(decl))
}

// deleteDeclaration godoc
// @Summary Delete a tax declaration
// @Tags tax-declarations
// @Param   id path string true "Declaration ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Declaration not found"
// @Failure 409 {object} ErrorResponse "Declaration already filed or paid"
// @Security BearerAuth
// @Router /tax-declarations/{id} [delete]
func (h *payableHandler) deleteDeclaration(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.taxService.DeleteDeclaration(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete tax declaration")
		return
	}
	c.Status(http.StatusNoContent)
}

// submitDeclaration godoc
// @Summary Submit a tax declaration
// @Description Files a pending or failed declaration. A malformed period or negative payable marks it FAILED.
// @Tags tax-declarations
// @Produce  json
// @Param   id path string true "Declaration ID"
// @Success 200 {object} dto.TaxDeclarationResponse
// @Failure 404 {object} ErrorResponse "Declaration not found"
// @Failure 409 {object} ErrorResponse "Declaration already filed or paid"
// @Security BearerAuth
// @Router /tax-declarations/{id}/submit [post]
func (h *payableHandler) submitDeclaration(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	decl, err := h.taxService.SubmitDeclaration(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to submit tax declaration")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxDeclarationResponse(decl))
}

// --- Purchase orders ---

// createOrder godoc
// @Summary Create a purchase order
// @Description The order number is generated when omitted. The total is the sum of quantity times unit price.
// @Tags purchase-orders
// @Accept  json
// @Produce  json
// @Param   order body dto.CreatePurchaseOrderRequest true "Order and line items"
// @Success 201 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Vendor or account not found"
// @Security BearerAuth
// @Router /purchase-orders [post]
func (h *payableHandler) createOrder(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create purchase order")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseOrderResponse(order))
}

// listOrders godoc
// @Summary List purchase orders
// @Tags purchase-orders
// @Produce  json
// @Param   status query string false "PENDING, APPROVED, COMPLETED or CANCELLED"
// @Success 200 {array} dto.PurchaseOrderResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Security BearerAuth
// @Router /purchase-orders [get]
func (h *payableHandler) listOrders(c *gin.Context) {
	var params dto.ListPurchaseOrdersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}
	var status *domain.PurchaseOrderStatus
	if params.Status != "" {
		s := domain.PurchaseOrderStatus(params.Status)
		status = &s
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, err, "Failed to list purchase orders")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseOrderListResponse(orders))
}

// getOrder godoc
// @Summary Get a purchase order
// @Tags purchase-orders
// @Produce  json
// @Param   id path string true "Purchase order ID"
// @Success 200 {object} dto.PurchaseOrderResponse
// @Failure 404 {object} ErrorResponse "Purchase order not found"
// @Security BearerAuth
// @Router /purchase-orders/{id} [get]
func (h *payableHandler) getOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve purchase order")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseOrderResponse(order))
}

// updateOrder godoc
// @Summary Update a purchase order
// @Description Changes fields or status. Line items can only change while the order is PENDING.
// @Tags purchase-orders
// @Accept  json
// @Produce  json
// @Param   id path string true "Purchase order ID"
// @Param   order body dto.UpdatePurchaseOrderRequest true "Fields to update"
// @Success 200 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Purchase order not found"
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /purchase-orders/{id} [put]
func (h *payableHandler) updateOrder(c *gin.Context) {
	var req dto.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update purchase order")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseOrderResponse(order))
}

// deleteOrder godoc
// @Summary Delete a purchase order
// @Tags purchase-orders
// @Param   id path string true "Purchase order ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Purchase order not found"
// @Failure 409 {object} ErrorResponse "Purchase order is completed"
// @Security BearerAuth
// @Router /purchase-orders/{id} [delete]
func (h *payableHandler) deleteOrder(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete purchase order")
		return
	}
	c.Status(http.StatusNoContent)
}
