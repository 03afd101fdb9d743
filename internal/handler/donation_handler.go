package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/models"
	"github.com/havenpaws/shelter-api/internal/service"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
	"github.com/havenpaws/shelter-api/pkg/response"
)

// DonationHandler exposes donation endpoints.
type DonationHandler struct {
	donations *service.DonationService
}

// NewDonationHandler constructs DonationHandler.
func NewDonationHandler(donations *service.DonationService) *DonationHandler {
	return &DonationHandler{donations: donations}
}

// List godoc
// @Summary List donations
// @Description Employees see only donations they recorded
// @Tags Donations
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /donations [get]
func (h *DonationHandler) List(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.DonationFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")

	donations, pagination, err := h.donations.List(c.Request.Context(), sub, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donations, pagination)
}

// Get godoc
// @Summary Get donation
// @Tags Donations
// @Produce json
// @Param id path string true "Donation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	donation, err := h.donations.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donation, nil)
}

// Create godoc
// @Summary Record donation
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body service.CreateDonationRequest true "Donation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid donation payload"))
		return
	}
	donation, err := h.donations.Create(c.Request.Context(), sub, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donation)
}

// Update godoc
// @Summary Update donation
// @Tags Donations
// @Accept json
// @Produce json
// @Param id path string true "Donation ID"
// @Param payload body service.UpdateDonationRequest true "Donation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donations/{id} [put]
func (h *DonationHandler) Update(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid donation payload"))
		return
	}
	donation, err := h.donations.Update(c.Request.Context(), sub, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donation, nil)
}

// Delete godoc
// @Summary Delete donation
// @Tags Donations
// @Produce json
// @Param id path string true "Donation ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donations/{id} [delete]
func (h *DonationHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.donations.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByUser godoc
// @Summary List donations recorded by a user
// @Tags Donations
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/donations [get]
func (h *DonationHandler) ListByUser(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	donations, err := h.donations.ListByUser(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donations, nil)
}
