package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/middleware"
	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
	"github.com/campuskit/academy-api/pkg/response"
)

// GradeHandler handles grade endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param company_id query string false "Filter by company"
// @Param search query string false "Search keyword"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var filter models.GradeFilter
	filter.CompanyID = c.Query("company_id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = parseBoolQuery(c, "active")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	grades, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Get godoc
// @Summary Get grade by id
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	grade, err := h.service.Get(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Create godoc
// @Summary Create grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Update(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
