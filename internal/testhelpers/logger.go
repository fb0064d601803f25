// Package testhelpers provides shared test setup utilities.
package testhelpers

import (
	"github.com/nordiccms/content-expiry/internal/logger"
)

// NewTestLogger creates a logger suitable for testing (discards output).
func NewTestLogger() logger.Logger {
	return logger.NewNop()
}
