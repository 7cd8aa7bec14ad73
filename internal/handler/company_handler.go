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

// CompanyHandler handles company endpoints.
type CompanyHandler struct {
	service *service.CompanyService
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: svc}
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param search query string false "Search keyword"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter models.CompanyFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = parseBoolQuery(c, "active")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	companies, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies, pagination)
}

// Get godoc
// @Summary Get company by id
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.service.Get(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body service.CreateCompanyRequest true "Company payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	company, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body service.UpdateCompanyRequest true "Company payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	company, err := h.service.Update(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company, nil)
}

// Delete godoc
// @Summary Deactivate company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
