package services

import (
	"context"
	"time"
)

// AuthSvc exchanges API keys for short-lived JWTs carrying the key's role.
// Authorization lives at the edge: handlers check the role claim, the ledger
// service never does.
type AuthSvc interface {
	// IssueToken validates an API key and returns a signed JWT, its expiry
	// and the role embedded in it.
	IssueToken(ctx context.Context, apiKey string) (jwt string, expiresAt time.Time, role string, err error)
}
