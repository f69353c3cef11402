package domain

import "time"

// TokenRole gates which ledger operations a caller may invoke. The ledger
// service itself performs no authorization; roles are enforced at the
// transport layer before core operations are reached.
type TokenRole string

const (
	// RoleOperator may invoke privileged operations: credit, debit, transfer,
	// global rate changes and token management.
	RoleOperator TokenRole = "OPERATOR"
	// RoleViewer may only invoke read-only queries.
	RoleViewer TokenRole = "VIEWER"
)

// APIToken represents an API key issued to a custody/exchange collaborator.
// Only a bcrypt hash of the key is stored; Prefix allows lookup without
// knowing the plaintext.
type APIToken struct {
	TokenID    string     `json:"tokenID"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	TokenHash  string     `json:"-"` // never exposed
	Role       TokenRole  `json:"role"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	RevokedAt  *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	CreatedBy  string     `json:"createdBy"`
}

// IsExpired reports whether the token has passed its expiry, if any.
func (t *APIToken) IsExpired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Before(now)
}

// IsRevoked reports whether the token has been revoked.
func (t *APIToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
