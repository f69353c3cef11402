package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	"github.com/accrualfi/accrual_ledger_app/internal/models"
	"github.com/accrualfi/accrual_ledger_app/internal/utils/mapping"
	"github.com/accrualfi/accrual_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const holderColumns = `holder_id, principal, rate, last_checkpoint, created_at, created_by, last_updated_at, last_updated_by`

// PgxLedgerRepository persists holders and the global ledger row.
type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

func scanHolder(row pgx.Row) (models.Holder, error) {
	var m models.Holder
	var lastCheckpoint sql.NullTime
	err := row.Scan(
		&m.HolderID,
		&m.Principal,
		&m.Rate,
		&lastCheckpoint,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Holder{}, err
	}
	if lastCheckpoint.Valid {
		m.LastCheckpoint = lastCheckpoint.Time
	}
	return m, nil
}

// FindHolderByID retrieves a holder by its ID.
func (r *PgxLedgerRepository) FindHolderByID(ctx context.Context, holderID string) (*domain.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM holders WHERE holder_id = $1;`

	m, err := scanHolder(r.Pool.QueryRow(ctx, query, holderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find holder %s: %w", holderID, err)
	}

	d := mapping.ToDomainHolder(m)
	return &d, nil
}

// ListHolders retrieves a page of holders ordered by creation time, keyed by
// an opaque (created_at, holder_id) cursor.
func (r *PgxLedgerRepository) ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error) {
	query := `SELECT ` + holderColumns + ` FROM holders`
	args := []any{}

	if nextToken != "" {
		afterTime, afterID, err := pagination.DecodeCursor(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` WHERE (created_at, holder_id) > ($1, $2)`
		args = append(args, afterTime, afterID)
	}
	query += fmt.Sprintf(` ORDER BY created_at, holder_id LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1) // one extra row to detect the next page

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list holders: %w", err)
	}
	defer rows.Close()

	holders := make([]domain.Holder, 0, limit)
	for rows.Next() {
		m, err := scanHolder(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan holder row: %w", err)
		}
		holders = append(holders, mapping.ToDomainHolder(m))
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate holder rows: %w", err)
	}

	var token string
	if len(holders) > limit {
		holders = holders[:limit]
		last := holders[len(holders)-1]
		token = pagination.EncodeCursor(last.CreatedAt, last.HolderID)
	}
	return holders, token, nil
}

// GetLedgerState retrieves the global ledger row.
func (r *PgxLedgerRepository) GetLedgerState(ctx context.Context) (*domain.LedgerState, error) {
	return r.getLedgerState(ctx, r.Pool, false)
}

// GetLedgerStateForUpdate selects and locks the global ledger row within tx.
// Every mutating ledger operation takes this lock first, which also gives a
// stable lock ordering across concurrent transactions.
func (r *PgxLedgerRepository) GetLedgerStateForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error) {
	return r.getLedgerState(ctx, tx, true)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgxLedgerRepository) getLedgerState(ctx context.Context, q queryRower, forUpdate bool) (*domain.LedgerState, error) {
	query := `
		SELECT id, global_rate, total_principal, created_at, created_by, last_updated_at, last_updated_by
		FROM ledger_state
		WHERE id = 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	query += `;`

	var m models.LedgerState
	err := q.QueryRow(ctx, query).Scan(
		&m.ID,
		&m.GlobalRate,
		&m.TotalPrincipal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ledger state row missing, was InitLedgerState run: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read ledger state: %w", err)
	}

	d := mapping.ToDomainLedgerState(m)
	return &d, nil
}

// InitLedgerState seeds the global ledger row if it does not exist yet.
func (r *PgxLedgerRepository) InitLedgerState(ctx context.Context, initialRate decimal.Decimal, callerID string) error {
	query := `
		INSERT INTO ledger_state (id, global_rate, total_principal, created_at, created_by, last_updated_at, last_updated_by)
		VALUES (1, $1, 0, $2, $3, $2, $3)
		ON CONFLICT (id) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, initialRate, time.Now().UTC(), callerID); err != nil {
		return fmt.Errorf("failed to init ledger state: %w", err)
	}
	return nil
}

// FindHoldersByIDsForUpdate selects holder rows and locks them for update.
// Holders with no row yet are absent from the returned map.
func (r *PgxLedgerRepository) FindHoldersByIDsForUpdate(ctx context.Context, tx pgx.Tx, holderIDs []string) (map[string]domain.Holder, error) {
	if len(holderIDs) == 0 {
		return map[string]domain.Holder{}, nil
	}

	query := `SELECT ` + holderColumns + ` FROM holders WHERE holder_id = ANY($1) ORDER BY holder_id FOR UPDATE;`

	rows, err := tx.Query(ctx, query, holderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock holders: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.Holder, len(holderIDs))
	for rows.Next() {
		m, err := scanHolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holder row: %w", err)
		}
		found[m.HolderID] = mapping.ToDomainHolder(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holder rows: %w", err)
	}
	return found, nil
}

// ApplyChangesetInTx upserts the changeset's holder rows, adjusts total
// principal and optionally replaces the global rate, all within tx.
func (r *PgxLedgerRepository) ApplyChangesetInTx(ctx context.Context, tx pgx.Tx, cs domain.LedgerChangeset) error {
	upsert := `
		INSERT INTO holders (holder_id, principal, rate, last_checkpoint, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (holder_id) DO UPDATE SET
			principal = EXCLUDED.principal,
			rate = EXCLUDED.rate,
			last_checkpoint = EXCLUDED.last_checkpoint,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	for _, h := range cs.Holders {
		m := mapping.ToModelHolder(h)
		var lastCheckpoint sql.NullTime
		if !m.LastCheckpoint.IsZero() {
			lastCheckpoint = sql.NullTime{Time: m.LastCheckpoint, Valid: true}
		}
		_, err := tx.Exec(ctx, upsert,
			m.HolderID,
			m.Principal,
			m.Rate,
			lastCheckpoint,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert holder %s: %w", m.HolderID, err)
		}
	}

	stateUpdate := `
		UPDATE ledger_state SET
			total_principal = total_principal + $1,
			global_rate = COALESCE($2, global_rate),
			last_updated_at = $3,
			last_updated_by = $4
		WHERE id = 1;
	`
	tag, err := tx.Exec(ctx, stateUpdate, cs.SupplyDelta, cs.GlobalRate, cs.UpdatedAt, cs.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update ledger state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger state row missing: %w", apperrors.ErrNotFound)
	}
	return nil
}
