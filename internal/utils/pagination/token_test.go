package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeVoucherCursor(t *testing.T) {
	date := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)

	token := EncodeVoucherCursor(date, 42)
	assert.NotEmpty(t, token)

	gotDate, gotSeq, err := DecodeVoucherCursor(token)
	require.NoError(t, err)
	assert.True(t, date.Equal(gotDate))
	assert.Equal(t, int64(42), gotSeq)

	// Non UTC inputs round-trip to the same instant.
	local := time.Date(2024, 1, 2, 3, 4, 5, 6, time.FixedZone("X", 3600))
	gotDate, _, err = DecodeVoucherCursor(EncodeVoucherCursor(local, 1))
	require.NoError(t, err)
	assert.True(t, local.Equal(gotDate))
}

func TestDecodeVoucherCursorError(t *testing.T) {
	_, _, err := DecodeVoucherCursor("this is not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noSep := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeVoucherCursor(noSep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.RawURLEncoding.EncodeToString([]byte("notadate|3"))
	_, _, err = DecodeVoucherCursor(badDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")

	badSeq := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|x"))
	_, _, err = DecodeVoucherCursor(badSeq)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence parse")
}
