package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Role      UserRole `json:"role"`
	CompanyID string   `json:"company_id"`
	SiteID    *string  `json:"site_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	CompanyID string   `json:"company_id"`
	SiteID    *string  `json:"site_id,omitempty"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Principal converts token claims into the request principal.
func (c *JWTClaims) Principal() Principal {
	if c == nil {
		return Guest()
	}
	return Principal{
		UserID:      c.UserID,
		CompanyID:   c.CompanyID,
		SiteID:      c.SiteID,
		Role:        c.Role,
		DisplayName: c.FullName,
	}
}
