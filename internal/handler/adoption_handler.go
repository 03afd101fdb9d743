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

// AdoptionHandler exposes adoption endpoints.
type AdoptionHandler struct {
	adoptions *service.AdoptionService
}

// NewAdoptionHandler constructs AdoptionHandler.
func NewAdoptionHandler(adoptions *service.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{adoptions: adoptions}
}

// List godoc
// @Summary List adoptions
// @Description Employees see only adoptions they processed
// @Tags Adoptions
// @Produce json
// @Param petId query string false "Filter by pet"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /adoptions [get]
func (h *AdoptionHandler) List(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.AdoptionFilter
	if petID := c.Query("petId"); petID != "" {
		filter.PetID = &petID
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")

	adoptions, pagination, err := h.adoptions.List(c.Request.Context(), sub, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, adoptions, pagination)
}

// Get godoc
// @Summary Get adoption
// @Tags Adoptions
// @Produce json
// @Param id path string true "Adoption ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /adoptions/{id} [get]
func (h *AdoptionHandler) Get(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	adoption, err := h.adoptions.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, adoption, nil)
}

// Create godoc
// @Summary Record adoption
// @Description Creates the adoption and marks the pet adopted in one transaction
// @Tags Adoptions
// @Accept json
// @Produce json
// @Param payload body service.CreateAdoptionRequest true "Adoption payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /adoptions [post]
func (h *AdoptionHandler) Create(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid adoption payload"))
		return
	}
	adoption, err := h.adoptions.Create(c.Request.Context(), sub, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, adoption)
}

// Update godoc
// @Summary Update adoption contact details
// @Tags Adoptions
// @Accept json
// @Produce json
// @Param id path string true "Adoption ID"
// @Param payload body service.UpdateAdoptionRequest true "Adoption payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /adoptions/{id} [put]
func (h *AdoptionHandler) Update(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid adoption payload"))
		return
	}
	adoption, err := h.adoptions.Update(c.Request.Context(), sub, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, adoption, nil)
}

// Delete godoc
// @Summary Delete adoption
// @Description Removes the adoption record; the pet keeps its adopted status
// @Tags Adoptions
// @Produce json
// @Param id path string true "Adoption ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /adoptions/{id} [delete]
func (h *AdoptionHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.adoptions.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
