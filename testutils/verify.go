// Package testutils contains helpers shared by the pilot's tests.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package's tests and fails if goroutines are still running afterwards.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m)
}
