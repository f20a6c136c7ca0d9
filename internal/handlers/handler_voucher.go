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

// voucherHandler handles HTTP requests for vouchers and their posting state.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
	posthog        *utils.PosthogClientWrapper
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade, posthog *utils.PosthogClientWrapper) *voucherHandler {
	return &voucherHandler{voucherService: vs, posthog: posthog}
}

// registerVoucherRoutes registers routes related to vouchers.
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := newVoucherHandler(voucherService, posthog)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:id", h.getVoucher)
		vouchers.PUT("/:id", h.updateVoucher)
		vouchers.DELETE("/:id", h.deleteVoucher)
		vouchers.PUT("/:id/review", h.reviewVoucher)
		vouchers.POST("/:id/post", h.postVoucher)
		vouchers.POST("/:id/unpost", h.unpostVoucher)
	}
}

// createVoucher godoc
// @Summary Create a voucher
// @Description Records an unposted voucher. Debits and credits must balance.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucher body dto.CreateVoucherRequest true "Voucher header and entries"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse "Validation error or unbalanced entries"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account or vendor not found"
// @Failure 500 {object} ErrorResponse "Failed to create voucher"
// @Security BearerAuth
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create voucher")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher created",
		slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_no", voucher.VoucherNo))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} ErrorResponse "Voucher not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve voucher"
// @Security BearerAuth
// @Router /vouchers/{id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Lists vouchers newest first. Pass nextToken from the previous page to continue.
// @Tags vouchers
// @Produce  json
// @Param   posted query bool false "Filter by posting state"
// @Param   reviewStatus query string false "UNREVIEWED, REVIEWED or REJECTED"
// @Param   from query string false "Earliest voucher date (YYYY-MM-DD)"
// @Param   to query string false "Latest voucher date, inclusive (YYYY-MM-DD)"
// @Param   accountId query string false "Only vouchers touching this account"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 500 {object} ErrorResponse "Failed to list vouchers"
// @Security BearerAuth
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateVoucher godoc
// @Summary Update a voucher
// @Description Replaces the header and entries of an unposted voucher
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Param   voucher body dto.UpdateVoucherRequest true "Voucher header and entries"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse "Validation error or unbalanced entries"
// @Failure 404 {object} ErrorResponse "Voucher not found"
// @Failure 409 {object} ErrorResponse "Voucher is posted or was modified concurrently"
// @Failure 500 {object} ErrorResponse "Failed to update voucher"
// @Security BearerAuth
// @Router /vouchers/{id} [put]
func (h *voucherHandler) updateVoucher(c *gin.Context) {
	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.UpdateVoucher(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// deleteVoucher godoc
// @Summary Delete a voucher
// @Description Deletes an unposted voucher
// @Tags vouchers
// @Param   id path string true "Voucher ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Voucher not found"
// @Failure 409 {object} ErrorResponse "Voucher is posted"
// @Failure 500 {object} ErrorResponse "Failed to delete voucher"
// @Security BearerAuth
// @Router /vouchers/{id} [delete]
func (h *voucherHandler) deleteVoucher(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.voucherService.DeleteVoucher(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete voucher")
		return
	}
	c.Status(http.StatusNoContent)
}

// reviewVoucher godoc
// @Summary Review a voucher
// @Description Sets the review annotation. Allowed on posted and unposted vouchers.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Param   review body dto.ReviewVoucherRequest true "Review status"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse "Invalid review status"
// @Failure 404 {object} ErrorResponse "Voucher not found"
// @Failure 500 {object} ErrorResponse "Failed to review voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/review [put]
func (h *voucherHandler) reviewVoucher(c *gin.Context) {
	var req dto.ReviewVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.ReviewVoucher(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to review voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// postVoucher godoc
// @Summary Post a voucher
// @Description Applies every entry to its account balance in one transaction
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse "Unbalanced entries"
// @Failure 404 {object} ErrorResponse "Voucher or account not found"
// @Failure 409 {object} ErrorResponse "Already posted or concurrent modification"
// @Failure 500 {object} ErrorResponse "Failed to post voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.PostVoucher(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to post voucher")
		return
	}

	middleware.PosthogEvent(c, h.posthog, "voucher_posted", map[string]any{"voucher_no": voucher.VoucherNo})
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// unpostVoucher godoc
// @Summary Unpost a voucher
// @Description Reverses exactly the balance changes applied when the voucher was posted
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} ErrorResponse "Voucher not found"
// @Failure 409 {object} ErrorResponse "Not posted, reconciled entry or concurrent modification"
// @Failure 500 {object} ErrorResponse "Failed to unpost voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/unpost [post]
func (h *voucherHandler) unpostVoucher(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.UnpostVoucher(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to unpost voucher")
		return
	}

	middleware.PosthogEvent(c, h.posthog, "voucher_unposted", map[string]any{"voucher_no": voucher.VoucherNo})
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}
