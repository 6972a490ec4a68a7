package recovery

import (
	"context"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

// Strategy attempts to resolve faults of one category.
// Strategies are registered once per category at startup; a category with
// no registered strategy is treated as non-recoverable.
type Strategy interface {
	// CanRecover reports whether recovery is worth attempting right now.
	// Must be a pure predicate with no side effects.
	CanRecover(f *fault.Fault) bool

	// Recover performs one recovery attempt and reports whether it succeeded
	Recover(ctx context.Context, f *fault.Fault) bool

	// FallbackAction returns a last-resort action to run when all recovery
	// attempts are exhausted, or nil when none exists. The returned action
	// must not panic; its own errors are swallowed.
	FallbackAction(f *fault.Fault) func(ctx context.Context)
}
