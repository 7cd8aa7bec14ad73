package models

// Principal is the authenticated actor for one request. It is derived from
// bearer token claims once per request and passed explicitly into every
// service call; there is no ambient current-user state.
type Principal struct {
	UserID      string   `json:"user_id"`
	CompanyID   string   `json:"company_id"`
	SiteID      *string  `json:"site_id,omitempty"`
	Role        UserRole `json:"role"`
	DisplayName string   `json:"display_name"`

	// Request metadata carried for audit records only.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// Guest is the sentinel principal used when claims are absent or unparsable.
func Guest() Principal {
	return Principal{Role: RoleGuest}
}

// IsGuest reports whether the principal is the unauthenticated sentinel.
func (p Principal) IsGuest() bool {
	return p.Role == RoleGuest || p.UserID == ""
}
