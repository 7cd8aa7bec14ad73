package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
	"github.com/campuskit/academy-api/pkg/response"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
