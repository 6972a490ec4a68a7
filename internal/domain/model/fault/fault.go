package fault

import (
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
)

// Fault is an immutable description of one failure occurrence.
// Category and severity are assigned exactly once at construction and
// never change afterwards.
type Fault struct {
	id          model.FaultID
	message     string
	category    model.Category
	severity    model.Severity
	recoverable bool
	context     string
	timestamp   time.Time
	cause       error
}

// Option configures a Fault at construction time
type Option func(*options)

type options struct {
	category    model.Category
	severity    model.Severity
	severitySet bool
	recoverable bool
	context     string
	cause       error
}

// WithCategory assigns the fault category
func WithCategory(c model.Category) Option {
	return func(o *options) {
		o.category = c
	}
}

// WithSeverity overrides the severity derived from the category
func WithSeverity(s model.Severity) Option {
	return func(o *options) {
		o.severity = s
		o.severitySet = true
	}
}

// WithRecoverable marks whether any recovery attempt is worth making.
// Faults are recoverable unless stated otherwise.
func WithRecoverable(r bool) Option {
	return func(o *options) {
		o.recoverable = r
	}
}

// WithContext attaches a free-form locator (e.g. "agent send", "tool: read_file")
func WithContext(ctx string) Option {
	return func(o *options) {
		o.context = ctx
	}
}

// WithCause preserves the original underlying error for diagnostics
func WithCause(err error) Option {
	return func(o *options) {
		o.cause = err
	}
}

// New creates a classified Fault. When no severity is supplied it is
// derived from the category.
func New(message string, opts ...Option) *Fault {
	o := options{
		category:    model.CategoryUnknown,
		recoverable: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.severitySet {
		o.severity = model.DefaultSeverity(o.category)
	}
	return &Fault{
		id:          model.NewFaultID(),
		message:     message,
		category:    o.category,
		severity:    o.severity,
		recoverable: o.recoverable,
		context:     o.context,
		timestamp:   time.Now(),
		cause:       o.cause,
	}
}

// ID returns the fault ID
func (f *Fault) ID() model.FaultID {
	return f.id
}

// Message returns the human-readable description
func (f *Fault) Message() string {
	return f.message
}

// Category returns the fault category
func (f *Fault) Category() model.Category {
	return f.category
}

// Severity returns the fault severity
func (f *Fault) Severity() model.Severity {
	return f.severity
}

// Recoverable reports whether a recovery attempt is worth making
func (f *Fault) Recoverable() bool {
	return f.recoverable
}

// Context returns the free-form locator, empty when none was given
func (f *Fault) Context() string {
	return f.context
}

// Timestamp returns when the fault was constructed
func (f *Fault) Timestamp() time.Time {
	return f.timestamp
}

// Cause returns the original underlying error, nil when none was given
func (f *Fault) Cause() error {
	return f.cause
}

// Error makes Fault usable as an error value
func (f *Fault) Error() string {
	if f.context != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", f.severity, f.category, f.message, f.context)
	}
	return fmt.Sprintf("[%s] %s: %s", f.severity, f.category, f.message)
}

// Unwrap exposes the cause to errors.Is/errors.As
func (f *Fault) Unwrap() error {
	return f.cause
}
