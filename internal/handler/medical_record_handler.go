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

// MedicalRecordHandler exposes medical record endpoints.
type MedicalRecordHandler struct {
	records *service.MedicalRecordService
}

// NewMedicalRecordHandler constructs MedicalRecordHandler.
func NewMedicalRecordHandler(records *service.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{records: records}
}

// List godoc
// @Summary List medical records
// @Tags MedicalRecords
// @Produce json
// @Param petId query string false "Filter by pet"
// @Param sort query string false "Sort by treat_date or created_at"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /medical-records [get]
func (h *MedicalRecordHandler) List(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.MedicalRecordFilter
	if petID := c.Query("petId"); petID != "" {
		filter.PetID = &petID
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.records.List(c.Request.Context(), sub, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get medical record
// @Tags MedicalRecords
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medical-records/{id} [get]
func (h *MedicalRecordHandler) Get(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.records.Get(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ListByPet godoc
// @Summary List a pet's treatment history
// @Tags MedicalRecords
// @Produce json
// @Param id path string true "Pet ID"
// @Success 200 {object} response.Envelope
// @Router /pets/{id}/medical-records [get]
func (h *MedicalRecordHandler) ListByPet(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	records, err := h.records.ListByPet(c.Request.Context(), sub, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Create godoc
// @Summary Record treatment
// @Tags MedicalRecords
// @Accept json
// @Produce json
// @Param payload body service.CreateMedicalRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /medical-records [post]
func (h *MedicalRecordHandler) Create(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid medical record payload"))
		return
	}
	record, err := h.records.Create(c.Request.Context(), sub, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update medical record
// @Tags MedicalRecords
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateMedicalRecordRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medical-records/{id} [put]
func (h *MedicalRecordHandler) Update(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid medical record payload"))
		return
	}
	record, err := h.records.Update(c.Request.Context(), sub, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete medical record
// @Tags MedicalRecords
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medical-records/{id} [delete]
func (h *MedicalRecordHandler) Delete(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.records.Delete(c.Request.Context(), sub, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
