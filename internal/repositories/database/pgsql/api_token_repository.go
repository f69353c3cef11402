package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	"github.com/accrualfi/accrual_ledger_app/internal/models"
	"github.com/accrualfi/accrual_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apiTokenColumns = `token_id, name, prefix, token_hash, role, last_used_at, expires_at, revoked_at, created_at, created_by`

// PgxAPITokenRepository persists issued API keys.
type PgxAPITokenRepository struct {
	pool *pgxpool.Pool
}

// newPgxAPITokenRepository creates a new repository for API token data.
func newPgxAPITokenRepository(pool *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{pool: pool}
}

var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

func scanAPIToken(row pgx.Row) (models.APIToken, error) {
	var m models.APIToken
	err := row.Scan(
		&m.TokenID,
		&m.Name,
		&m.Prefix,
		&m.TokenHash,
		&m.Role,
		&m.LastUsedAt,
		&m.ExpiresAt,
		&m.RevokedAt,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}

// SaveToken persists a newly issued token.
func (r *PgxAPITokenRepository) SaveToken(ctx context.Context, token domain.APIToken) error {
	m := mapping.ToModelAPIToken(token)
	query := `
		INSERT INTO api_tokens (` + apiTokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.TokenID, m.Name, m.Prefix, m.TokenHash, m.Role,
		m.LastUsedAt, m.ExpiresAt, m.RevokedAt, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			return fmt.Errorf("%w: token with ID %s already exists", apperrors.ErrDuplicate, m.TokenID)
		}
		return fmt.Errorf("failed to save token %s: %w", m.TokenID, err)
	}
	return nil
}

// FindTokenByID retrieves a token by its ID.
func (r *PgxAPITokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE token_id = $1;`

	m, err := scanAPIToken(r.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find token %s: %w", tokenID, err)
	}

	d := mapping.ToDomainAPIToken(m)
	return &d, nil
}

// FindTokensByPrefix retrieves unrevoked tokens sharing a lookup prefix.
func (r *PgxAPITokenRepository) FindTokensByPrefix(ctx context.Context, prefix string) ([]domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE prefix = $1 AND revoked_at IS NULL;`
	return r.queryTokens(ctx, query, prefix)
}

// ListTokens retrieves all unrevoked tokens.
func (r *PgxAPITokenRepository) ListTokens(ctx context.Context) ([]domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE revoked_at IS NULL ORDER BY created_at;`
	return r.queryTokens(ctx, query)
}

func (r *PgxAPITokenRepository) queryTokens(ctx context.Context, query string, args ...any) ([]domain.APIToken, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.APIToken
	for rows.Next() {
		m, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		tokens = append(tokens, mapping.ToDomainAPIToken(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token rows: %w", err)
	}
	return tokens, nil
}

// UpdateLastUsed records when a token last authenticated a request.
func (r *PgxAPITokenRepository) UpdateLastUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	query := `UPDATE api_tokens SET last_used_at = $2 WHERE token_id = $1;`
	if _, err := r.pool.Exec(ctx, query, tokenID, usedAt); err != nil {
		return fmt.Errorf("failed to update last used for token %s: %w", tokenID, err)
	}
	return nil
}

// RevokeToken marks a token revoked.
func (r *PgxAPITokenRepository) RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error {
	query := `UPDATE api_tokens SET revoked_at = $2 WHERE token_id = $1 AND revoked_at IS NULL;`
	tag, err := r.pool.Exec(ctx, query, tokenID, revokedAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", tokenID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
