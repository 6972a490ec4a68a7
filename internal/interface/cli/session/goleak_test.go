package session

import (
	"testing"

	"go.uber.org/goleak"
)

// TestPackageLeaks verifies the session loops stop their signal goroutines
func TestPackageLeaks(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreTopFunction("os/signal.loop"),
	)
}
