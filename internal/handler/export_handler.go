package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/middleware"
	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
	"github.com/campuskit/academy-api/pkg/response"
)

// ExportHandler streams roster exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Students godoc
// @Summary Export the student roster
// @Tags Exports
// @Produce text/csv
// @Param format query string false "Export format (csv|pdf)" default(csv)
// @Param company_id query string false "Filter by company"
// @Param site_id query string false "Filter by site"
// @Param grade_id query string false "Filter by grade"
// @Param active query bool false "Filter by active flag"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/students [get]
func (h *ExportHandler) Students(c *gin.Context) {
	var filter models.StudentFilter
	filter.CompanyID = c.Query("company_id")
	filter.SiteID = c.Query("site_id")
	filter.GradeID = c.Query("grade_id")
	filter.Active = parseBoolQuery(c, "active")

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.StudentRoster(c.Request.Context(), middleware.CurrentPrincipal(c), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

// Teachers godoc
// @Summary Export the teacher roster
// @Tags Exports
// @Produce text/csv
// @Param format query string false "Export format (csv|pdf)" default(csv)
// @Param company_id query string false "Filter by company"
// @Param site_id query string false "Filter by site"
// @Param active query bool false "Filter by active flag"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/teachers [get]
func (h *ExportHandler) Teachers(c *gin.Context) {
	var filter models.TeacherFilter
	filter.CompanyID = c.Query("company_id")
	filter.SiteID = c.Query("site_id")
	filter.Active = parseBoolQuery(c, "active")

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.TeacherRoster(c.Request.Context(), middleware.CurrentPrincipal(c), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

func writeExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
