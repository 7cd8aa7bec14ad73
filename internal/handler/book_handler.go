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

// BookHandler handles book endpoints.
type BookHandler struct {
	service *service.BookService
}

// NewBookHandler constructs a book handler.
func NewBookHandler(svc *service.BookService) *BookHandler {
	return &BookHandler{service: svc}
}

// List godoc
// @Summary List books
// @Tags Books
// @Produce json
// @Param company_id query string false "Filter by company"
// @Param category query string false "Filter by category"
// @Param search query string false "Search keyword"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	var filter models.BookFilter
	filter.CompanyID = c.Query("company_id")
	filter.Category = c.Query("category")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = parseBoolQuery(c, "active")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	books, pagination, err := h.service.List(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, pagination)
}

// Get godoc
// @Summary Get book by id
// @Tags Books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Create godoc
// @Summary Create book
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body service.CreateBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req service.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	book, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// Update godoc
// @Summary Update book
// @Tags Books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body service.UpdateBookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	var req service.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	book, err := h.service.Update(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Delete godoc
// @Summary Delete book
// @Tags Books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
