package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the read-only reports and the dashboard
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/balance_sheet", h.getBalanceSheet)
		reportingGroup.GET("/income_statement", h.getIncomeStatement)
		reportingGroup.GET("/cash_flow", h.getCashFlow)
	}
	rg.GET("/dashboard", h.getDashboard)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet
// @Description Current balances of asset, liability and equity accounts, with net income and a balance check
// @Tags reports
// @Produce json
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance_sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	report, err := h.reportingService.BalanceSheet(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Description Income and expense accounts. With from and to, uses posted activity of vouchers dated in the range.
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.IncomeStatementReport
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income_statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "date range", err)
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), params.From, params.To)
	if err != nil {
		handleServiceError(c, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getCashFlow godoc
// @Summary Generate cash flow report
// @Description Cash and bank account balances. With from and to, adds inflow and outflow per account.
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.CashFlowReport
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cash_flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "date range", err)
		return
	}

	report, err := h.reportingService.CashFlow(c.Request.Context(), params.From, params.To)
	if err != nil {
		handleServiceError(c, err, "Failed to generate cash flow report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getDashboard godoc
// @Summary Dashboard figures
// @Description Monthly income and expense, balance totals and counts for the console home page
// @Tags reports
// @Produce json
// @Success 200 {object} domain.Dashboard
// @Failure 500 {object} ErrorResponse "Failed to build dashboard"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	dashboard, err := h.reportingService.Dashboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
