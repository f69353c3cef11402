package pagination_test

import (
	"testing"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	createdAt := time.Date(2025, 6, 15, 10, 30, 0, 123456789, time.UTC)
	id := "holder-abc"

	token := pagination.EncodeCursor(createdAt, id)
	require.NotEmpty(t, token)

	gotTime, gotID, err := pagination.DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursor_IDWithDelimiter(t *testing.T) {
	createdAt := time.Now().UTC()
	id := "holder|with|pipes"

	gotTime, gotID, err := pagination.DecodeCursor(pagination.EncodeCursor(createdAt, id))
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, _, err := pagination.DecodeCursor("not-base64!!")
	assert.Error(t, err)

	_, _, err = pagination.DecodeCursor("aGVsbG8=") // "hello", no delimiter
	assert.Error(t, err)
}
