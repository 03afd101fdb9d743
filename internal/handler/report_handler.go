package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/service"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
	"github.com/havenpaws/shelter-api/pkg/response"
)

// ReportHandler exposes administrative export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate godoc
// @Summary Export shelter data
// @Description Renders a CSV or PDF export of the requested entity
// @Tags Reports
// @Produce octet-stream
// @Param entity path string true "pets, donations, adoptions or medical_records"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/{entity} [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entity := service.ReportEntity(c.Param("entity"))
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	file, err := h.reports.Generate(c.Request.Context(), sub, entity, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Data)
}
