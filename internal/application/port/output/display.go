package output

import "github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"

// Display is the user-facing surface for fault reporting.
// It is optional; when absent the fault handler falls back to a
// severity-prefixed line on stderr.
type Display interface {
	// DisplayError surfaces an unrecovered fault to the user
	DisplayError(f *fault.Fault, context string)

	// DisplayWarning prints a non-fatal notice
	DisplayWarning(text string)
}
