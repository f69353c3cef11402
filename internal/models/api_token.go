package models

import "time"

// APIToken is the DB row for an issued API key.
type APIToken struct {
	TokenID    string     `db:"token_id"`
	Name       string     `db:"name"`
	Prefix     string     `db:"prefix"`
	TokenHash  string     `db:"token_hash"`
	Role       string     `db:"role"`
	LastUsedAt *time.Time `db:"last_used_at"`
	ExpiresAt  *time.Time `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
	CreatedAt  time.Time  `db:"created_at"`
	CreatedBy  string     `db:"created_by"`
}
