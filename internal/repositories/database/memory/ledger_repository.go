// Package memory provides an in-memory implementation of the ledger
// repository ports. It backs service tests and local development; the
// Postgres driver is the production backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	"github.com/accrualfi/accrual_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerRepository is an in-memory ledger store guarded by one RWMutex.
//
// Transaction control is a formality here: Begin hands back a nil pgx.Tx and
// the *InTx methods take the lock themselves. Atomicity of a changeset holds
// because ApplyChangesetInTx applies everything under one lock acquisition;
// serialization across operations is the ledger service's job.
type LedgerRepository struct {
	mu      sync.RWMutex
	holders map[string]domain.Holder
	state   *domain.LedgerState
}

// NewLedgerRepository creates an empty in-memory ledger store.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{holders: make(map[string]domain.Holder)}
}

var _ portsrepo.LedgerRepositoryWithTx = (*LedgerRepository)(nil)

// Begin starts a no-op transaction.
func (r *LedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }

// Commit commits a no-op transaction.
func (r *LedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error { return nil }

// Rollback rolls back a no-op transaction.
func (r *LedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error { return nil }

// InitLedgerState seeds the global ledger row if it does not exist yet.
func (r *LedgerRepository) InitLedgerState(ctx context.Context, initialRate decimal.Decimal, callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != nil {
		return nil
	}
	now := time.Now().UTC()
	r.state = &domain.LedgerState{
		GlobalRate:     initialRate,
		TotalPrincipal: decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     callerID,
			LastUpdatedAt: now,
			LastUpdatedBy: callerID,
		},
	}
	return nil
}

// FindHolderByID retrieves a holder by its ID.
func (r *LedgerRepository) FindHolderByID(ctx context.Context, holderID string) (*domain.Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holders[holderID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &h, nil
}

// ListHolders retrieves a page of holders ordered by creation time.
func (r *LedgerRepository) ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Holder, 0, len(r.holders))
	for _, h := range r.holders {
		all = append(all, h)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].HolderID < all[j].HolderID
	})

	start := 0
	if nextToken != "" {
		afterTime, afterID, err := pagination.DecodeCursor(nextToken)
		if err != nil {
			return nil, "", err
		}
		for start < len(all) {
			h := all[start]
			if h.CreatedAt.After(afterTime) || (h.CreatedAt.Equal(afterTime) && h.HolderID > afterID) {
				break
			}
			start++
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var token string
	if end < len(all) && len(page) > 0 {
		last := page[len(page)-1]
		token = pagination.EncodeCursor(last.CreatedAt, last.HolderID)
	}
	return page, token, nil
}

// GetLedgerState retrieves the global ledger row.
func (r *LedgerRepository) GetLedgerState(ctx context.Context) (*domain.LedgerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ledgerStateLocked()
}

// GetLedgerStateForUpdate retrieves the global ledger row. The nil tx is
// ignored; the service's write lock provides the exclusion FOR UPDATE gives
// the Postgres driver.
func (r *LedgerRepository) GetLedgerStateForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ledgerStateLocked()
}

func (r *LedgerRepository) ledgerStateLocked() (*domain.LedgerState, error) {
	if r.state == nil {
		return nil, apperrors.ErrNotFound
	}
	state := *r.state
	return &state, nil
}

// FindHoldersByIDsForUpdate retrieves holder records; missing holders are
// absent from the returned map.
func (r *LedgerRepository) FindHoldersByIDsForUpdate(ctx context.Context, tx pgx.Tx, holderIDs []string) (map[string]domain.Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]domain.Holder, len(holderIDs))
	for _, id := range holderIDs {
		if h, ok := r.holders[id]; ok {
			found[id] = h
		}
	}
	return found, nil
}

// ApplyChangesetInTx applies the whole changeset under one lock acquisition.
func (r *LedgerRepository) ApplyChangesetInTx(ctx context.Context, tx pgx.Tx, cs domain.LedgerChangeset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return apperrors.ErrNotFound
	}
	for _, h := range cs.Holders {
		r.holders[h.HolderID] = h
	}
	r.state.TotalPrincipal = r.state.TotalPrincipal.Add(cs.SupplyDelta)
	if cs.GlobalRate != nil {
		r.state.GlobalRate = *cs.GlobalRate
	}
	r.state.LastUpdatedAt = cs.UpdatedAt
	r.state.LastUpdatedBy = cs.UpdatedBy
	return nil
}
