package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/accrualfi/accrual_ledger_app/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepo(t *testing.T) *memory.LedgerRepository {
	t.Helper()
	repo := memory.NewLedgerRepository()
	require.NoError(t, repo.InitLedgerState(context.Background(), decimal.NewFromInt(100), "system"))
	return repo
}

func TestInitLedgerState_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	// A second init must not reset the state.
	cs := domain.LedgerChangeset{SupplyDelta: decimal.NewFromInt(42), UpdatedAt: time.Now(), UpdatedBy: "t"}
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, cs))
	require.NoError(t, repo.InitLedgerState(ctx, decimal.NewFromInt(999), "system"))

	state, err := repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.GlobalRate.Equal(decimal.NewFromInt(100)))
	assert.True(t, state.TotalPrincipal.Equal(decimal.NewFromInt(42)))
}

func TestApplyChangeset_UpsertsHoldersAndSupply(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	now := time.Now().UTC()

	h := domain.NewHolder("alice")
	h.Principal = decimal.NewFromInt(500)
	h.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: "t", LastUpdatedAt: now, LastUpdatedBy: "t"}

	cs := domain.LedgerChangeset{
		Holders:     []domain.Holder{h},
		SupplyDelta: decimal.NewFromInt(500),
		UpdatedAt:   now,
		UpdatedBy:   "t",
	}
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, cs))

	got, err := repo.FindHolderByID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Principal.Equal(decimal.NewFromInt(500)))

	state, err := repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.TotalPrincipal.Equal(decimal.NewFromInt(500)))

	// Upsert replaces the existing record.
	h.Principal = decimal.NewFromInt(300)
	cs = domain.LedgerChangeset{
		Holders:     []domain.Holder{h},
		SupplyDelta: decimal.NewFromInt(-200),
		UpdatedAt:   now,
		UpdatedBy:   "t",
	}
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, cs))

	got, err = repo.FindHolderByID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Principal.Equal(decimal.NewFromInt(300)))

	state, err = repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.TotalPrincipal.Equal(decimal.NewFromInt(300)))
}

func TestApplyChangeset_GlobalRateOnlyWhenSet(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	cs := domain.LedgerChangeset{SupplyDelta: decimal.Zero, UpdatedAt: time.Now(), UpdatedBy: "t"}
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, cs))

	state, err := repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.GlobalRate.Equal(decimal.NewFromInt(100)), "nil GlobalRate must leave the rate alone")

	newRate := decimal.NewFromInt(50)
	cs.GlobalRate = &newRate
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, cs))

	state, err = repo.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.GlobalRate.Equal(newRate))
}

func TestFindHolderByID_NotFound(t *testing.T) {
	repo := seededRepo(t)
	_, err := repo.FindHolderByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindHoldersByIDsForUpdate_SkipsMissing(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	now := time.Now().UTC()

	h := domain.NewHolder("alice")
	h.CreatedAt = now
	require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, domain.LedgerChangeset{
		Holders: []domain.Holder{h}, SupplyDelta: decimal.Zero, UpdatedAt: now, UpdatedBy: "t",
	}))

	found, err := repo.FindHoldersByIDsForUpdate(ctx, nil, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	_, ok := found["alice"]
	assert.True(t, ok)
}

func TestListHolders_CursorOrdering(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c1", "a2", "b3"} {
		h := domain.NewHolder(id)
		h.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.ApplyChangesetInTx(ctx, nil, domain.LedgerChangeset{
			Holders: []domain.Holder{h}, SupplyDelta: decimal.Zero, UpdatedAt: h.CreatedAt, UpdatedBy: "t",
		}))
	}

	page1, token, err := repo.ListHolders(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "c1", page1[0].HolderID)
	assert.Equal(t, "a2", page1[1].HolderID)
	require.NotEmpty(t, token)

	page2, token2, err := repo.ListHolders(ctx, 2, token)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "b3", page2[0].HolderID)
	assert.Empty(t, token2)
}

func TestListHolders_BadCursor(t *testing.T) {
	repo := seededRepo(t)
	_, _, err := repo.ListHolders(context.Background(), 10, "not-a-cursor")
	assert.Error(t, err)
}
