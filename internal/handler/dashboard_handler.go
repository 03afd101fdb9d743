package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/service"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
	"github.com/havenpaws/shelter-api/pkg/response"
)

// DashboardHandler exposes the operator dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get godoc
// @Summary Operator dashboard
// @Description Counts and recent activity, scoped to the caller for employees
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, err := h.dashboard.Get(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
