package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
)

type vendorHandler struct {
	vendorService portssvc.VendorSvcFacade
}

func registerVendorRoutes(rg *gin.RouterGroup, vendorService portssvc.VendorSvcFacade) {
	h := &vendorHandler{vendorService: vendorService}

	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.createVendor)
		vendors.GET("", h.listVendors)
		vendors.GET("/:id", h.getVendor)
		vendors.PUT("/:id", h.updateVendor)
		vendors.DELETE("/:id", h.deleteVendor)
	}
}

// createVendor godoc
// @Summary Create a vendor
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   vendor body dto.CreateVendorRequest true "Vendor details"
// @Success 201 {object} dto.VendorResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 500 {object} ErrorResponse "Failed to create vendor"
// @Security BearerAuth
// @Router /vendors [post]
func (h *vendorHandler) createVendor(c *gin.Context) {
	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create vendor")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVendorResponse(vendor))
}

// listVendors godoc
// @Summary List vendors
// @Description Lists vendors by name. With q, returns the closest name matches first.
// @Tags vendors
// @Produce  json
// @Param   q query string false "Fuzzy name search"
// @Success 200 {array} dto.VendorResponse
// @Failure 500 {object} ErrorResponse "Failed to list vendors"
// @Security BearerAuth
// @Router /vendors [get]
func (h *vendorHandler) listVendors(c *gin.Context) {
	var params dto.ListVendorsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "query parameters", err)
		return
	}

	vendors, err := h.vendorService.ListVendors(c.Request.Context(), params.Query)
	if err != nil {
		handleServiceError(c, err, "Failed to list vendors")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorListResponse(vendors))
}

// getVendor godoc
// @Summary Get a vendor
// @Tags vendors
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Success 200 {object} dto.VendorResponse
// @Failure 404 {object} ErrorResponse "Vendor not found"
// @Security BearerAuth
// @Router /vendors/{id} [get]
func (h *vendorHandler) getVendor(c *gin.Context) {
	vendor, err := h.vendorService.GetVendorByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve vendor")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

// updateVendor godoc
// @Summary Update a vendor
// @Tags vendors
// @Accept  json
// @Produce  json
// @Param   id path string true "Vendor ID"
// @Param   vendor body dto.UpdateVendorRequest true "Fields to update"
// @Success 200 {object} dto.VendorResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Vendor not found"
// @Failure 409 {object} ErrorResponse "Version conflict"
// @Security BearerAuth
// @Router /vendors/{id} [put]
func (h *vendorHandler) updateVendor(c *gin.Context) {
	var req dto.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request format", err)
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to update vendor")
		return
	}
	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

// deleteVendor godoc
// @Summary Delete a vendor
// @Tags vendors
// @Param   id path string true "Vendor ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Vendor not found"
// @Failure 409 {object} ErrorResponse "Vendor is referenced by bills, purchase orders or vouchers"
// @Security BearerAuth
// @Router /vendors/{id} [delete]
func (h *vendorHandler) deleteVendor(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.vendorService.DeleteVendor(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to delete vendor")
		return
	}
	c.Status(http.StatusNoContent)
}
