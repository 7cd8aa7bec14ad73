package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/middleware"
	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
	"github.com/campuskit/academy-api/pkg/response"
)

// AuditLogHandler handles audit log endpoints.
type AuditLogHandler struct {
	service *service.AuditLogService
}

// NewAuditLogHandler constructs an audit log handler.
func NewAuditLogHandler(svc *service.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{service: svc}
}

// List godoc
// @Summary List audit log entries
// @Tags AuditLogs
// @Produce json
// @Param table_name query string false "Filter by table name"
// @Param action query string false "Filter by action (INSERT|UPDATE|DELETE)"
// @Param record_id query string false "Filter by record id"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *AuditLogHandler) List(c *gin.Context) {
	var filter models.AuditLogFilter
	filter.TableName = c.Query("table_name")
	filter.Action = strings.ToUpper(c.Query("action"))
	filter.RecordID = c.Query("record_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	logs, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
