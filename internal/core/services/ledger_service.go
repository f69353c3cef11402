package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/accrualfi/accrual_ledger_app/internal/utils/accrual"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// LedgerServiceConfig carries the ledger's behavioral knobs.
type LedgerServiceConfig struct {
	// StrictRateDecrease rejects a new global rate equal to the current one.
	// When false, only increases are rejected.
	StrictRateDecrease bool

	// Now supplies the ledger clock. Defaults to time.Now. The clock must be
	// monotonic with respect to holder checkpoints; regression is a fatal
	// accounting error, not something the service clamps away.
	Now func() time.Time
}

// ledgerService implements the accrual and rebase accounting engine.
//
// Every mutating operation realizes pending interest for the holders it
// touches (folding accrued interest into principal and resetting their
// checkpoint), then applies the requested principal change, all inside one
// repository transaction. A single mutex serializes mutations so no caller
// ever observes a half-applied checkpoint; queries go straight to the
// repository and compute entitlement live without writing anything.
type ledgerService struct {
	repo   portsrepo.LedgerRepositoryWithTx
	strict bool
	now    func() time.Time

	mu sync.Mutex // serializes Credit/Debit/Transfer/SetGlobalRate
}

// NewLedgerService creates the core ledger service.
func NewLedgerService(repo portsrepo.LedgerRepositoryWithTx, cfg LedgerServiceConfig) portssvc.LedgerSvcFacade {
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &ledgerService{
		repo:   repo,
		strict: cfg.StrictRateDecrease,
		now:    nowFn,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// realize folds interest accrued since the holder's last checkpoint into
// principal and advances the checkpoint to now. Returns the newly realized
// interest; the caller adds it to total supply, since realization effectively
// mints the base units backing the entitlement. Idempotent at equal time.
func realize(holder *domain.Holder, now time.Time) (decimal.Decimal, error) {
	if holder.LastCheckpoint.IsZero() {
		// First contact; nothing has accrued yet, just start the clock.
		holder.LastCheckpoint = now
		return decimal.Zero, nil
	}
	if now.Before(holder.LastCheckpoint) {
		return decimal.Zero, &apperrors.ClockRegressionError{Now: now, LastCheckpoint: holder.LastCheckpoint}
	}

	entitlement, err := accrual.Entitlement(holder.Principal, holder.Rate, now.Sub(holder.LastCheckpoint))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to realize interest for holder %s: %w", holder.HolderID, err)
	}

	delta := entitlement.Sub(holder.Principal)
	holder.Principal = entitlement
	holder.LastCheckpoint = now
	return delta, nil
}

// loadHolderForUpdate fetches and locks a holder row inside tx, substituting
// the default untouched record when no row exists yet. The second return
// value reports whether a row existed.
func (s *ledgerService) loadHolderForUpdate(ctx context.Context, tx pgx.Tx, holderID string) (domain.Holder, bool, error) {
	found, err := s.repo.FindHoldersByIDsForUpdate(ctx, tx, []string{holderID})
	if err != nil {
		return domain.Holder{}, false, fmt.Errorf("failed to lock holder %s: %w", holderID, err)
	}
	if h, ok := found[holderID]; ok {
		return h, true, nil
	}
	return domain.NewHolder(holderID), false, nil
}

func stampHolder(h *domain.Holder, existed bool, now time.Time, callerID string) {
	if !existed {
		h.CreatedAt = now
		h.CreatedBy = callerID
	}
	h.LastUpdatedAt = now
	h.LastUpdatedBy = callerID
}

// SetGlobalRate replaces the global rate with a smaller one.
func (s *ledgerService) SetGlobalRate(ctx context.Context, newRate decimal.Decimal, callerID string) (*domain.LedgerState, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if newRate.IsNegative() || !newRate.IsInteger() {
		return nil, fmt.Errorf("%w: global rate must be a non-negative integer, got %s", apperrors.ErrValidation, newRate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.Rollback(ctx, tx) //nolint:errcheck // no-op after commit

	state, err := s.repo.GetLedgerStateForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger state: %w", err)
	}

	rejected := newRate.GreaterThan(state.GlobalRate)
	if s.strict && newRate.Equal(state.GlobalRate) {
		rejected = true
	}
	if rejected {
		logger.Warn("Rejected global rate update",
			slog.String("current_rate", state.GlobalRate.String()),
			slog.String("attempted_rate", newRate.String()))
		return nil, &apperrors.RateIncreaseRejectedError{Current: state.GlobalRate, Attempted: newRate}
	}

	oldRate := state.GlobalRate
	cs := domain.LedgerChangeset{
		SupplyDelta: decimal.Zero,
		GlobalRate:  &newRate,
		UpdatedAt:   now,
		UpdatedBy:   callerID,
	}
	if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
		return nil, fmt.Errorf("failed to apply rate change: %w", err)
	}
	if err := s.repo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit rate change: %w", err)
	}

	state.GlobalRate = newRate
	state.LastUpdatedAt = now
	state.LastUpdatedBy = callerID
	logger.Info("Global rate lowered",
		slog.String("old_rate", oldRate.String()),
		slog.String("new_rate", newRate.String()))
	return state, nil
}

// Credit realizes pending interest for the holder, locks their rate if their
// post-realization principal is zero, then adds amount to principal.
func (s *ledgerService) Credit(ctx context.Context, holderID string, amount decimal.Decimal, rateOverride *decimal.Decimal, callerID string) (*domain.Holder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if holderID == "" {
		return nil, fmt.Errorf("%w: holder ID is required", apperrors.ErrValidation)
	}
	if err := accrual.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if rateOverride != nil && (rateOverride.IsNegative() || !rateOverride.IsInteger()) {
		return nil, fmt.Errorf("%w: rate override must be a non-negative integer, got %s", apperrors.ErrValidation, rateOverride)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.Rollback(ctx, tx) //nolint:errcheck

	state, err := s.repo.GetLedgerStateForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger state: %w", err)
	}
	// A holder's rate may never exceed the global rate observed at assignment
	// time; an override above it would break rate monotonicity downstream.
	if rateOverride != nil && rateOverride.GreaterThan(state.GlobalRate) {
		return nil, fmt.Errorf("%w: rate override %s exceeds current global rate %s",
			apperrors.ErrValidation, rateOverride, state.GlobalRate)
	}

	holder, existed, err := s.loadHolderForUpdate(ctx, tx, holderID)
	if err != nil {
		return nil, err
	}

	delta, err := realize(&holder, now)
	if err != nil {
		return nil, err
	}

	// Rate lock: a holder with zero post-realization principal gets the rate
	// in effect now (override when the custody layer supplies one). Holders
	// drained back to zero re-lock on their next credit by the same rule.
	if holder.Principal.IsZero() {
		if rateOverride != nil {
			holder.Rate = *rateOverride
		} else {
			holder.Rate = state.GlobalRate
		}
	}

	holder.Principal = holder.Principal.Add(amount)
	stampHolder(&holder, existed, now, callerID)

	cs := domain.LedgerChangeset{
		Holders:     []domain.Holder{holder},
		SupplyDelta: delta.Add(amount),
		UpdatedAt:   now,
		UpdatedBy:   callerID,
	}
	if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
		return nil, fmt.Errorf("failed to apply credit: %w", err)
	}
	if err := s.repo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit credit: %w", err)
	}

	logger.Info("Credit applied",
		slog.String("holder_id", holderID),
		slog.String("amount", amount.String()),
		slog.String("realized_interest", delta.String()),
		slog.String("rate", holder.Rate.String()))
	return &holder, nil
}

// Debit realizes pending interest for the holder, then subtracts amount from
// principal. domain.AmountMax drains the full entitlement.
//
// On insufficient balance the realization is still committed: it only
// reflects interest that had already accrued, and rolling it back would lose
// the checkpoint advance.
func (s *ledgerService) Debit(ctx context.Context, holderID string, amount decimal.Decimal, callerID string) (*domain.Holder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if holderID == "" {
		return nil, fmt.Errorf("%w: holder ID is required", apperrors.ErrValidation)
	}
	drainAll := amount.Equal(domain.AmountMax)
	if !drainAll {
		if err := accrual.ValidateAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.Rollback(ctx, tx) //nolint:errcheck

	if _, err := s.repo.GetLedgerStateForUpdate(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to lock ledger state: %w", err)
	}

	holder, existed, err := s.loadHolderForUpdate(ctx, tx, holderID)
	if err != nil {
		return nil, err
	}

	delta, err := realize(&holder, now)
	if err != nil {
		return nil, err
	}

	if drainAll {
		amount = holder.Principal
	}
	if amount.GreaterThan(holder.Principal) {
		// Keep the realization, fail the debit.
		stampHolder(&holder, existed, now, callerID)
		cs := domain.LedgerChangeset{
			Holders:     []domain.Holder{holder},
			SupplyDelta: delta,
			UpdatedAt:   now,
			UpdatedBy:   callerID,
		}
		if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
			return nil, fmt.Errorf("failed to apply realization: %w", err)
		}
		if err := s.repo.Commit(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to commit realization: %w", err)
		}
		return nil, &apperrors.InsufficientBalanceError{Available: holder.Principal, Requested: amount}
	}

	holder.Principal = holder.Principal.Sub(amount)
	stampHolder(&holder, existed, now, callerID)

	cs := domain.LedgerChangeset{
		Holders:     []domain.Holder{holder},
		SupplyDelta: delta.Sub(amount),
		UpdatedAt:   now,
		UpdatedBy:   callerID,
	}
	if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
		return nil, fmt.Errorf("failed to apply debit: %w", err)
	}
	if err := s.repo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit debit: %w", err)
	}

	logger.Info("Debit applied",
		slog.String("holder_id", holderID),
		slog.String("amount", amount.String()),
		slog.String("realized_interest", delta.String()))
	return &holder, nil
}

// Transfer realizes pending interest for both holders, applies rate
// inheritance when the receiver holds zero entitlement, then moves principal.
func (s *ledgerService) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, callerID string) (*domain.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if fromID == "" || toID == "" {
		return nil, fmt.Errorf("%w: both holder IDs are required", apperrors.ErrValidation)
	}
	drainAll := amount.Equal(domain.AmountMax)
	if !drainAll {
		if err := accrual.ValidateAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.Rollback(ctx, tx) //nolint:errcheck

	if _, err := s.repo.GetLedgerStateForUpdate(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to lock ledger state: %w", err)
	}

	if fromID == toID {
		return s.selfTransfer(ctx, tx, fromID, amount, drainAll, now, callerID)
	}

	found, err := s.repo.FindHoldersByIDsForUpdate(ctx, tx, []string{fromID, toID})
	if err != nil {
		return nil, fmt.Errorf("failed to lock holders: %w", err)
	}
	from, fromExisted := found[fromID]
	if !fromExisted {
		from = domain.NewHolder(fromID)
	}
	to, toExisted := found[toID]
	if !toExisted {
		to = domain.NewHolder(toID)
	}

	// The two realizations touch disjoint state; order cannot affect the result.
	deltaFrom, err := realize(&from, now)
	if err != nil {
		return nil, err
	}
	deltaTo, err := realize(&to, now)
	if err != nil {
		return nil, err
	}

	// Rate inheritance on first contact: a receiver with zero entitlement
	// takes the sender's rate, whatever the transfer amount.
	if to.Principal.IsZero() {
		to.Rate = from.Rate
	}

	if drainAll {
		amount = from.Principal
	}

	stampHolder(&from, fromExisted, now, callerID)
	stampHolder(&to, toExisted, now, callerID)

	if amount.GreaterThan(from.Principal) {
		// Keep both realizations, fail the move.
		cs := domain.LedgerChangeset{
			Holders:     []domain.Holder{from, to},
			SupplyDelta: deltaFrom.Add(deltaTo),
			UpdatedAt:   now,
			UpdatedBy:   callerID,
		}
		if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
			return nil, fmt.Errorf("failed to apply realization: %w", err)
		}
		if err := s.repo.Commit(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to commit realization: %w", err)
		}
		return nil, &apperrors.InsufficientBalanceError{Available: from.Principal, Requested: amount}
	}

	from.Principal = from.Principal.Sub(amount)
	to.Principal = to.Principal.Add(amount)

	cs := domain.LedgerChangeset{
		Holders:     []domain.Holder{from, to},
		SupplyDelta: deltaFrom.Add(deltaTo),
		UpdatedAt:   now,
		UpdatedBy:   callerID,
	}
	if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
		return nil, fmt.Errorf("failed to apply transfer: %w", err)
	}
	if err := s.repo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	logger.Info("Transfer applied",
		slog.String("from_holder_id", fromID),
		slog.String("to_holder_id", toID),
		slog.String("amount", amount.String()))
	return &domain.TransferResult{From: from, To: to, Amount: amount}, nil
}

// selfTransfer handles from == to: realization happens once, principal is
// unchanged, and the balance check still applies.
func (s *ledgerService) selfTransfer(ctx context.Context, tx pgx.Tx, holderID string, amount decimal.Decimal, drainAll bool, now time.Time, callerID string) (*domain.TransferResult, error) {
	holder, existed, err := s.loadHolderForUpdate(ctx, tx, holderID)
	if err != nil {
		return nil, err
	}

	delta, err := realize(&holder, now)
	if err != nil {
		return nil, err
	}
	if drainAll {
		amount = holder.Principal
	}

	stampHolder(&holder, existed, now, callerID)
	cs := domain.LedgerChangeset{
		Holders:     []domain.Holder{holder},
		SupplyDelta: delta,
		UpdatedAt:   now,
		UpdatedBy:   callerID,
	}
	if err := s.repo.ApplyChangesetInTx(ctx, tx, cs); err != nil {
		return nil, fmt.Errorf("failed to apply realization: %w", err)
	}
	if err := s.repo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit realization: %w", err)
	}

	if amount.GreaterThan(holder.Principal) {
		return nil, &apperrors.InsufficientBalanceError{Available: holder.Principal, Requested: amount}
	}
	return &domain.TransferResult{From: holder, To: holder, Amount: amount}, nil
}

// GetHolder retrieves a holder's full stored record.
func (s *ledgerService) GetHolder(ctx context.Context, holderID string) (*domain.Holder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	holder, err := s.repo.FindHolderByID(ctx, holderID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find holder", slog.String("error", err.Error()), slog.String("holder_id", holderID))
		}
		return nil, err
	}
	return holder, nil
}

// loadOrDefault reads a holder, substituting the untouched default record for
// holders with no row (sparse-map semantics for queries).
func (s *ledgerService) loadOrDefault(ctx context.Context, holderID string) (domain.Holder, error) {
	holder, err := s.repo.FindHolderByID(ctx, holderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewHolder(holderID), nil
		}
		return domain.Holder{}, err
	}
	return *holder, nil
}

// EntitlementOf computes the holder's live balance without touching stored state.
func (s *ledgerService) EntitlementOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	holder, err := s.loadOrDefault(ctx, holderID)
	if err != nil {
		return decimal.Zero, err
	}
	if holder.LastCheckpoint.IsZero() {
		return holder.Principal, nil
	}

	now := s.now().UTC()
	if now.Before(holder.LastCheckpoint) {
		return decimal.Zero, &apperrors.ClockRegressionError{Now: now, LastCheckpoint: holder.LastCheckpoint}
	}
	entitlement, err := accrual.Entitlement(holder.Principal, holder.Rate, now.Sub(holder.LastCheckpoint))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute entitlement for holder %s: %w", holderID, err)
	}
	return entitlement, nil
}

// PrincipalOf returns the stored principal, excluding unrealized interest.
func (s *ledgerService) PrincipalOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	holder, err := s.loadOrDefault(ctx, holderID)
	if err != nil {
		return decimal.Zero, err
	}
	return holder.Principal, nil
}

// RateOf returns the holder's locked-in rate.
func (s *ledgerService) RateOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	holder, err := s.loadOrDefault(ctx, holderID)
	if err != nil {
		return decimal.Zero, err
	}
	return holder.Rate, nil
}

// GlobalRate returns the rate currently assigned to new holders.
func (s *ledgerService) GlobalRate(ctx context.Context) (decimal.Decimal, error) {
	state, err := s.repo.GetLedgerState(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger state: %w", err)
	}
	return state.GlobalRate, nil
}

// TotalSupply returns the sum of all holders' principal.
func (s *ledgerService) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	state, err := s.repo.GetLedgerState(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger state: %w", err)
	}
	return state.TotalPrincipal, nil
}

// ListHolders returns a page of holder records.
func (s *ledgerService) ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	holders, token, err := s.repo.ListHolders(ctx, limit, nextToken)
	if err != nil {
		logger.Error("Failed to list holders", slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("failed to list holders: %w", err)
	}
	if holders == nil {
		holders = []domain.Holder{}
	}
	return holders, token, nil
}
