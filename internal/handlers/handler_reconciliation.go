package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxOFXUpload bounds the size of an imported statement file.
const maxOFXUpload = 8 << 20

// reconciliationHandler handles bank statements and manual matching.
type reconciliationHandler struct {
	service portssvc.ReconciliationSvcFacade
	posthog *utils.PosthogClientWrapper
}

// registerReconciliationRoutes registers statement, item and matching routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, service portssvc.ReconciliationSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := &reconciliationHandler{service: service, posthog: posthog}

	statements := rg.Group("/bank-statements")
	{
		statements.POST("", h.createStatement)
		statements.GET("", h.listStatements)
		statements.GET("/:id", h.getStatement)
		statements.PUT("/:id", h.updateStatement)
		statements.DELETE("/:id", h.deleteStatement)
		statements.POST("/:id/items", h.addItem)
		statements.POST("/:id/items/batch", h.addItems)
		statements.POST("/:id/items/import", h.importOFX)
	}

	items := rg.Group("/bank-statement-items")
	{
		items.POST("/:id/reconcile", h.reconcile)
		items.POST("/:id/unreconcile", h.unreconcile)
	}

	rg.GET("/unreconciled-voucher-entries", h.listUnreconciledEntries)
}

// createStatement godoc
// @Summary Create a bank statement
// @Tags bank-statements
// @Accept  json
// @Produce  json
// @Param   statement body dto.CreateBankStatementRequest true "Statement header"
// @Success 201 {object} dto.BankStatementResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to create bank statement"
// @Security BearerAuth
// @Router /bank-statements [post]
func (h *reconciliationHandler) createStatement(c *gin.Context) {
	var req dto.CreateBankStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	statement, err := h.service.CreateStatement(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create bank statement")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBankStatementResponse(statement))
}

// listStatements godoc
// @Summary List bank statements
// @Tags bank-statements
// @Produce  json
// @Param   accountId query string false "Only statements of this account"
// @Success 200 {array} dto.BankStatementResponse
// @Failure 500 {object} ErrorResponse "Failed to list bank statements"
// @Security BearerAuth
// @Router /bank-statements [get]
func (h *reconciliationHandler) listStatements(c *gin.Context) {
	var params dto.ListBankStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}

	statements, err := h.service.ListStatements(c.Request.Context(), optionalString(params.AccountID))
	if err != nil {
		handleServiceError(c, err, "Failed to list bank statements")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankStatementListResponse(statements))
}

// getStatement godoc
// @Summary Get a bank statement with its items
// @Tags bank-statements
// @Produce  json
// @Param   id path string true "Statement ID"
// @Success 200 {object} dto.BankStatementResponse
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve bank statement"
// @Security BearerAuth
// @Router /bank-statements/{id} [get]
func (h *reconciliationHandler) getStatement(c *gin.Context) {
	statement, err := h.service.GetStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve bank statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankStatementResponse(statement))
}

// updateStatement godoc
// @Summary Update a bank statement header
// @Tags bank-statements
// @Accept  json
// @Produce  json
// @Param   id path string true "Statement ID"
// @Param   statement body dto.UpdateBankStatementRequest true "Fields to update"
// @Success 200 {object} dto.BankStatementResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 409 {object} ErrorResponse "Version conflict"
// @Failure 500 {object} ErrorResponse "Failed to update bank statement"
// @Security BearerAuth
// @Router /bank-statements/{id} [put]
func (h *reconciliationHandler) updateStatement(c *gin.Context) {
	var req dto.UpdateBankStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	statement, err := h.service.UpdateStatement(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update bank statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankStatementResponse(statement))
}

// deleteStatement godoc
// @Summary Delete a bank statement
// @Description Deletes the statement and its items, releasing their reconciliation links
// @Tags bank-statements
// @Param   id path string true "Statement ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 500 {object} ErrorResponse "Failed to delete bank statement"
// @Security BearerAuth
// @Router /bank-statements/{id} [delete]
func (h *reconciliationHandler) deleteStatement(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStatement(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete bank statement")
		return
	}
	c.Status(http.StatusNoContent)
}

// addItem godoc
// @Summary Add a statement item
// @Tags bank-statements
// @Accept  json
// @Produce  json
// @Param   id path string true "Statement ID"
// @Param   item body dto.StatementItemRequest true "Statement line"
// @Success 201 {object} dto.StatementItemResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 500 {object} ErrorResponse "Failed to add statement item"
// @Security BearerAuth
// @Router /bank-statements/{id}/items [post]
func (h *reconciliationHandler) addItem(c *gin.Context) {
	var req dto.StatementItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to add statement item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToStatementItemResponse(item))
}

// addItems godoc
// @Summary Add several statement items
// @Description Adds every line or none
// @Tags bank-statements
// @Accept  json
// @Produce  json
// @Param   id path string true "Statement ID"
// @Param   items body dto.BatchStatementItemsRequest true "Statement lines"
// @Success 201 {array} dto.StatementItemResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 500 {object} ErrorResponse "Failed to add statement items"
// @Security BearerAuth
// @Router /bank-statements/{id}/items/batch [post]
func (h *reconciliationHandler) addItems(c *gin.Context) {
	var req dto.BatchStatementItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	items, err := h.service.AddItems(c.Request.Context(), c.Param("id"), req.Items, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to add statement items")
		return
	}
	c.JSON(http.StatusCreated, dto.ToStatementItemListResponse(items))
}

// importOFX godoc
// @Summary Import statement items from OFX
// @Description Accepts an OFX document as the request body or as the multipart field "file". Transactions already on the statement are skipped.
// @Tags bank-statements
// @Accept  application/x-ofx
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path string true "Statement ID"
// @Success 201 {object} dto.ImportStatementResponse
// @Failure 400 {object} ErrorResponse "Unreadable OFX document"
// @Failure 404 {object} ErrorResponse "Statement not found"
// @Failure 500 {object} ErrorResponse "Failed to import statement"
// @Security BearerAuth
// @Router /bank-statements/{id}/items/import [post]
func (h *reconciliationHandler) importOFX(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxOFXUpload)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "upload", err)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			badRequest(c, "upload", err)
			return
		}
		defer file.Close()
		result, err := h.service.ImportOFX(c.Request.Context(), c.Param("id"), file, userID)
		h.respondImport(c, result, err)
		return
	}

	result, err := h.service.ImportOFX(c.Request.Context(), c.Param("id"), c.Request.Body, userID)
	h.respondImport(c, result, err)
}

func (h *reconciliationHandler) respondImport(c *gin.Context, result *domain.StatementImport, err error) {
	if err != nil {
		handleServiceError(c, err, "Failed to import statement")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Statement imported",
		slog.Int("imported", len(result.Imported)), slog.Int("skipped", result.Skipped))
	c.JSON(http.StatusCreated, dto.ToImportStatementResponse(result))
}

// reconcile godoc
// @Summary Reconcile a statement item
// @Description Links the item to a posted voucher entry on the statement's account. An empty voucherEntryId clears the link.
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   id path string true "Statement item ID"
// @Param   match body dto.ReconcileRequest true "Voucher entry to link"
// @Success 200 {object} dto.StatementItemResponse
// @Failure 400 {object} ErrorResponse "Entry is on another account"
// @Failure 404 {object} ErrorResponse "Item or entry not found"
// @Failure 409 {object} ErrorResponse "Item or entry already reconciled"
// @Failure 422 {object} ErrorResponse "Entry belongs to an unposted voucher"
// @Failure 500 {object} ErrorResponse "Failed to reconcile"
// @Security BearerAuth
// @Router /bank-statement-items/{id}/reconcile [post]
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	itemID := c.Param("id")

	if strings.TrimSpace(req.VoucherEntryID) == "" {
		item, err := h.service.Unreconcile(c.Request.Context(), itemID, userID)
		if err != nil {
			handleServiceError(c, err, "Failed to unreconcile")
			return
		}
		c.JSON(http.StatusOK, dto.ToStatementItemResponse(item))
		return
	}

	item, err := h.service.Reconcile(c.Request.Context(), itemID, req.VoucherEntryID, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to reconcile")
		return
	}
	middleware.PosthogEvent(c, h.posthog, "statement_item_reconciled", nil)
	c.JSON(http.StatusOK, dto.ToStatementItemResponse(item))
}

// unreconcile godoc
// @Summary Unreconcile a statement item
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Statement item ID"
// @Success 200 {object} dto.StatementItemResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 500 {object} ErrorResponse "Failed to unreconcile"
// @Security BearerAuth
// @Router /bank-statement-items/{id}/unreconcile [post]
func (h *reconciliationHandler) unreconcile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	item, err := h.service.Unreconcile(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to unreconcile")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementItemResponse(item))
}

// listUnreconciledEntries godoc
// @Summary List reconciliation candidates
// @Description Lists posted entries on bank accounts that no statement item links to yet
// @Tags reconciliation
// @Produce  json
// @Param   accountId query string false "Only entries of this bank account"
// @Success 200 {array} dto.UnreconciledEntryResponse
// @Failure 500 {object} ErrorResponse "Failed to list unreconciled entries"
// @Security BearerAuth
// @Router /unreconciled-voucher-entries [get]
func (h *reconciliationHandler) listUnreconciledEntries(c *gin.Context) {
	var params dto.ListUnreconciledParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}

	entries, err := h.service.ListUnreconciledEntries(c.Request.Context(), optionalString(params.AccountID))
	if err != nil {
		handleServiceError(c, err, "Failed to list unreconciled entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToUnreconciledEntryResponses(entries))
}

// optionalString turns an empty query value into nil.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
