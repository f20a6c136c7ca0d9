package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeVoucherCursor creates an opaque token pointing just after a voucher in
// date desc, sequence desc order.
func EncodeVoucherCursor(date time.Time, sequenceNo int64) string {
	tokenStr := fmt.Sprintf("%s|%d", date.UTC().Format(timeFormat), sequenceNo)
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeVoucherCursor parses a token produced by EncodeVoucherCursor.
func DecodeVoucherCursor(token string) (time.Time, int64, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || seq < 0 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (sequence parse)")
	}

	return date, seq, nil
}
