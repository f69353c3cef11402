package accrual_test

import (
	"testing"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/utils/accrual"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEntitlement(t *testing.T) {
	testCases := []struct {
		name      string
		principal string
		rate      string
		elapsed   time.Duration
		expected  string
	}{
		{
			name:      "zero principal accrues nothing",
			principal: "0",
			rate:      "50000000000",
			elapsed:   24 * time.Hour,
			expected:  "0",
		},
		{
			name:      "zero rate accrues nothing",
			principal: "1000000",
			rate:      "0",
			elapsed:   24 * time.Hour,
			expected:  "1000000",
		},
		{
			name:      "zero elapsed returns principal",
			principal: "1000000",
			rate:      "50000000000",
			elapsed:   0,
			expected:  "1000000",
		},
		{
			name:      "sub-second elapsed does not accrue",
			principal: "1000000000000000000",
			rate:      "50000000000",
			elapsed:   999 * time.Millisecond,
			expected:  "1000000000000000000",
		},
		{
			// 100 * (1e18 + 5e10*3600) / 1e18 = 100.018, truncated to 100
			name:      "small principal truncates to principal",
			principal: "100",
			rate:      "50000000000",
			elapsed:   time.Hour,
			expected:  "100",
		},
		{
			// 1e12 * (1e18 + 5e10*3600) / 1e18 = 1e12 + 1.8e8
			name:      "one hour at 5e10 per second",
			principal: "1000000000000",
			rate:      "50000000000",
			elapsed:   time.Hour,
			expected:  "1000180000000",
		},
		{
			name:      "two hours doubles the accrued interest",
			principal: "1000000000000",
			rate:      "50000000000",
			elapsed:   2 * time.Hour,
			expected:  "1000360000000",
		},
		{
			// whole-token principal at 18 decimals, one year at ~4.7%/year
			name:      "large principal large elapsed",
			principal: "1000000000000000000000000",
			rate:      "1500000000",
			elapsed:   365 * 24 * time.Hour,
			expected:  "1047304000000000000000000",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := accrual.Entitlement(dec(tc.principal), dec(tc.rate), tc.elapsed)
			require.NoError(t, err)
			assert.True(t, dec(tc.expected).Equal(got), "expected %s, got %s", tc.expected, got)
		})
	}
}

func TestEntitlement_MatchesFormula(t *testing.T) {
	// entitlement = principal * (Scale + rate*seconds) / Scale, truncated.
	principal := dec("100")
	rate := dec("50000000000")
	seconds := decimal.NewFromInt(3600)

	want, _ := principal.Mul(accrual.Scale.Add(rate.Mul(seconds))).QuoRem(accrual.Scale, 0)
	got, err := accrual.Entitlement(principal, rate, time.Hour)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestEntitlement_NeverBelowPrincipal(t *testing.T) {
	principals := []string{"0", "1", "99", "1000000000000", "999999999999999999999"}
	rates := []string{"0", "1", "50000000000", "999999999999"}
	elapsed := []time.Duration{0, time.Second, time.Hour, 365 * 24 * time.Hour}

	for _, p := range principals {
		for _, r := range rates {
			for _, e := range elapsed {
				got, err := accrual.Entitlement(dec(p), dec(r), e)
				require.NoError(t, err)
				assert.True(t, got.GreaterThanOrEqual(dec(p)),
					"entitlement %s below principal %s (rate %s, elapsed %s)", got, p, r, e)
			}
		}
	}
}

func TestEntitlement_LinearOverEqualWindows(t *testing.T) {
	// Growth over any two equal-length windows must match within one unit of
	// truncation error.
	principal := dec("123456789012345")
	rate := dec("50000000000")

	first, err := accrual.AccruedInterest(principal, rate, time.Hour)
	require.NoError(t, err)
	total, err := accrual.AccruedInterest(principal, rate, 2*time.Hour)
	require.NoError(t, err)

	second := total.Sub(first)
	diff := first.Sub(second).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
		"windows differ by %s: first %s, second %s", diff, first, second)
}

func TestEntitlement_InvalidInputs(t *testing.T) {
	_, err := accrual.Entitlement(dec("-1"), decimal.Zero, time.Hour)
	assert.Error(t, err)

	_, err = accrual.Entitlement(decimal.Zero, dec("-1"), time.Hour)
	assert.Error(t, err)

	_, err = accrual.Entitlement(decimal.Zero, decimal.Zero, -time.Second)
	assert.Error(t, err)
}

func TestAccruedInterest(t *testing.T) {
	got, err := accrual.AccruedInterest(dec("1000000000000"), dec("50000000000"), time.Hour)
	require.NoError(t, err)
	assert.True(t, dec("180000000").Equal(got), "got %s", got)

	got, err = accrual.AccruedInterest(dec("1000000000000"), dec("50000000000"), 0)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, accrual.ValidateAmount(decimal.Zero))
	assert.NoError(t, accrual.ValidateAmount(dec("1000000")))
	assert.Error(t, accrual.ValidateAmount(dec("-1")))
	assert.Error(t, accrual.ValidateAmount(dec("1.5")))
}
