package dto

import "time"

// IssueTokenRequest defines the data needed to exchange an API key for a JWT.
type IssueTokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// IssueTokenResponse represents a successful API-key exchange.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
