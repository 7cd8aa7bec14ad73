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

// SiteHandler handles site endpoints.
type SiteHandler struct {
	service *service.SiteService
}

// NewSiteHandler constructs a site handler.
func NewSiteHandler(svc *service.SiteService) *SiteHandler {
	return &SiteHandler{service: svc}
}

// List godoc
// @Summary List sites
// @Tags Sites
// @Produce json
// @Param company_id query string false "Filter by company"
// @Param search query string false "Search keyword"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sites [get]
func (h *SiteHandler) List(c *gin.Context) {
	var filter models.SiteFilter
	filter.CompanyID = c.Query("company_id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = parseBoolQuery(c, "active")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	sites, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sites, pagination)
}

// Get godoc
// @Summary Get site by id
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sites/{id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	site, err := h.service.Get(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}

// Create godoc
// @Summary Create site
// @Tags Sites
// @Accept json
// @Produce json
// @Param payload body service.CreateSiteRequest true "Site payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /sites [post]
func (h *SiteHandler) Create(c *gin.Context) {
	var req service.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	site, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, site)
}

// Update godoc
// @Summary Update site
// @Tags Sites
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param payload body service.UpdateSiteRequest true "Site payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sites/{id} [put]
func (h *SiteHandler) Update(c *gin.Context) {
	var req service.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	site, err := h.service.Update(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}

// Delete godoc
// @Summary Delete site
// @Tags Sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /sites/{id} [delete]
func (h *SiteHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
