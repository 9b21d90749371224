// pkg/transfer/error.go
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRowCountMismatch is returned when the stored row count of a load differs
// from the number of records written
var ErrRowCountMismatch = errors.New("row count mismatch")

// WrapError creates a new error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsRetryableError checks if an error should be retried based on its type/message
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrRowCountMismatch) {
		return false
	}

	errorMsg := strings.ToLower(err.Error())
	return strings.Contains(errorMsg, "connection") ||
		strings.Contains(errorMsg, "timeout") ||
		strings.Contains(errorMsg, "temporary") ||
		strings.Contains(errorMsg, "try again")
}
