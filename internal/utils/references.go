package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/teris-io/shortid"
)

// NewReference builds a human readable document number such as
// "PAY-20240301-Xy3kP9aB". The suffix is a short id, unique per process.
func NewReference(prefix string, at time.Time) (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("generate %s reference: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(id)), nil
}
