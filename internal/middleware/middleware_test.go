package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/service"
)

const testSecret = "middleware-test-secret"

func newAuthService() *service.AuthService {
	return service.NewAuthService(nil, validator.New(), zap.NewNop(), service.AuthConfig{
		Secret:     testSecret,
		Expiration: time.Hour,
		Issuer:     "academy-api",
	})
}

func signToken(t *testing.T, claims models.JWTClaims) string {
	t.Helper()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    "academy-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestPrincipalFromBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signToken(t, models.JWTClaims{
		UserID:    "user-1",
		CompanyID: "company-1",
		Role:      models.RoleAdmin,
		FullName:  "Ada Admin",
	})

	var got models.Principal
	router := gin.New()
	router.Use(Principal(newAuthService()))
	router.GET("/", func(c *gin.Context) {
		got = CurrentPrincipal(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "test-agent")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if got.UserID != "user-1" || got.Role != models.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if got.UserAgent != "test-agent" {
		t.Fatalf("expected user agent to be captured, got %q", got.UserAgent)
	}
}

func TestPrincipalFallsBackToGuest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got models.Principal
	router := gin.New()
	router.Use(Principal(newAuthService()))
	router.GET("/", func(c *gin.Context) {
		got = CurrentPrincipal(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(recorder, req)

	if !got.IsGuest() {
		t.Fatalf("expected guest principal, got %+v", got)
	}
}

func TestRequireRolesRejectsGuest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Principal(newAuthService()))
	router.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signToken(t, models.JWTClaims{
		UserID:    "user-2",
		CompanyID: "company-1",
		Role:      models.RoleTeacher,
	})

	router := gin.New()
	router.Use(Principal(newAuthService()))
	router.GET("/", RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signToken(t, models.JWTClaims{
		UserID:    "user-3",
		CompanyID: "company-1",
		Role:      models.RoleAdmin,
	})

	router := gin.New()
	router.Use(Principal(newAuthService()))
	router.GET("/", RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
