package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/dto"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/service/recovery"
)

// Logger is the minimal logging surface the fault handler needs.
// The CLI layer's leveled logger satisfies it.
type Logger interface {
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warn(format string, args ...interface{})  {}
func (noopLogger) Error(format string, args ...interface{}) {}

// HandlerConfig controls retry behavior and logging of the fault handler
type HandlerConfig struct {
	MaxRetries int           // recovery attempts per fault
	RetryDelay time.Duration // fixed delay between attempts
	LogErrors  bool          // emit a log line for every handled fault
	StateDir   string        // session state directory, recreated by the file system strategy
}

// DefaultHandlerConfig returns the handler defaults
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		MaxRetries: 3,
		RetryDelay: time.Second,
		LogErrors:  true,
		StateDir:   ".kaiwa",
	}
}

// FaultHandler is the single entry point for turning raw failures into
// classified faults, attempting recovery, and tracking statistics.
// It never panics and never re-throws collaborator errors; callers get a
// boolean outcome and the fault is retained in the log.
type FaultHandler struct {
	mu       sync.Mutex
	config   HandlerConfig
	registry *recovery.Registry
	log      []*fault.Fault
	degraded dto.DegradedConfig
	display  output.Display
	logger   Logger
}

// NewFaultHandler creates a fault handler with default strategies
// pre-registered for NETWORK, FILE_SYSTEM, and CONFIGURATION.
// A nil display falls back to severity-prefixed lines on stderr; a nil
// logger disables log output.
func NewFaultHandler(cfg HandlerConfig, display output.Display, logger Logger) *FaultHandler {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if display == nil {
		display = &streamDisplay{w: os.Stderr}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	h := &FaultHandler{
		config:   cfg,
		registry: recovery.NewRegistry(),
		display:  display,
		logger:   logger,
	}
	warn := display.DisplayWarning
	h.registry.Register(model.CategoryNetwork, recovery.NewNetworkStrategy(nil, warn))
	h.registry.Register(model.CategoryFileSystem, recovery.NewFileSystemStrategy(afero.NewOsFs(), cfg.StateDir))
	h.registry.Register(model.CategoryConfiguration, recovery.NewConfigurationStrategy(func() error { return nil }, warn))
	return h
}

// RegisterStrategy installs a strategy for the category, overwriting any
// existing registration.
func (h *FaultHandler) RegisterStrategy(cat model.Category, s recovery.Strategy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.Register(cat, s)
}

// Handle classifies the error, attempts recovery, and reports whether the
// fault was handled. An input that is already a *fault.Fault keeps its
// classification. faultContext is a free-form locator and may be empty.
func (h *FaultHandler) Handle(ctx context.Context, err error, faultContext string) bool {
	if err == nil {
		return true
	}
	f, ok := err.(*fault.Fault)
	if !ok {
		f = classify(err, faultContext)
	}
	return h.handleFault(ctx, f, faultContext)
}

// HandleNetwork handles an error pre-assigned to the NETWORK category
func (h *FaultHandler) HandleNetwork(ctx context.Context, err error, faultContext string) bool {
	return h.handleCategorized(ctx, err, faultContext, model.CategoryNetwork)
}

// HandleFileSystem handles an error pre-assigned to the FILE_SYSTEM category
func (h *FaultHandler) HandleFileSystem(ctx context.Context, err error, faultContext string) bool {
	return h.handleCategorized(ctx, err, faultContext, model.CategoryFileSystem)
}

// HandleTool handles an error pre-assigned to the TOOL_EXECUTION category
func (h *FaultHandler) HandleTool(ctx context.Context, err error, faultContext string) bool {
	return h.handleCategorized(ctx, err, faultContext, model.CategoryToolExecution)
}

// HandleConfiguration handles an error pre-assigned to the CONFIGURATION category
func (h *FaultHandler) HandleConfiguration(ctx context.Context, err error, faultContext string) bool {
	return h.handleCategorized(ctx, err, faultContext, model.CategoryConfiguration)
}

// HandleInitialization handles a startup failure. Initialization faults
// are always CRITICAL and never recoverable.
func (h *FaultHandler) HandleInitialization(ctx context.Context, err error, faultContext string) bool {
	if err == nil {
		return true
	}
	f := fault.New(err.Error(),
		fault.WithCategory(model.CategoryInitialization),
		fault.WithSeverity(model.SeverityCritical),
		fault.WithRecoverable(false),
		fault.WithContext(faultContext),
		fault.WithCause(err),
	)
	return h.handleFault(ctx, f, faultContext)
}

// HandleInput handles an error pre-assigned to the INPUT_VALIDATION category
func (h *FaultHandler) HandleInput(ctx context.Context, err error, faultContext string) bool {
	return h.handleCategorized(ctx, err, faultContext, model.CategoryInputValidation)
}

func (h *FaultHandler) handleCategorized(ctx context.Context, err error, faultContext string, cat model.Category) bool {
	if err == nil {
		return true
	}
	if f, ok := err.(*fault.Fault); ok {
		return h.handleFault(ctx, f, faultContext)
	}
	f := fault.New(err.Error(),
		fault.WithCategory(cat),
		fault.WithContext(faultContext),
		fault.WithCause(err),
	)
	return h.handleFault(ctx, f, faultContext)
}

func (h *FaultHandler) handleFault(ctx context.Context, f *fault.Fault, faultContext string) bool {
	h.mu.Lock()
	h.log = append(h.log, f)
	cfg := h.config
	strategy := h.registry.Lookup(f.Category())
	h.mu.Unlock()

	if cfg.LogErrors {
		h.logger.Error("fault id=%s category=%s severity=%s recoverable=%t context=%q msg=%q",
			f.ID(), f.Category(), f.Severity(), f.Recoverable(), f.Context(), f.Message())
	}

	recovered := h.attemptRecovery(ctx, f, strategy, cfg)
	if !recovered {
		h.display.DisplayError(f, faultContext)
	}
	return recovered
}

// attemptRecovery runs the strategy with bounded retries. A fallback
// action that completes counts as handled. Strategy panics are swallowed
// and treated as failed attempts.
func (h *FaultHandler) attemptRecovery(ctx context.Context, f *fault.Fault, strategy recovery.Strategy, cfg HandlerConfig) (recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("recovery for %s panicked: %v", f.Category(), r)
			recovered = false
		}
	}()

	if !f.Recoverable() || strategy == nil || !strategy.CanRecover(f) {
		return false
	}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if attemptRecover(ctx, strategy, f) {
			return true
		}
		if attempt < cfg.MaxRetries {
			sleep(ctx, cfg.RetryDelay)
		}
	}

	if action := strategy.FallbackAction(f); action != nil {
		runFallback(ctx, action)
		return true
	}
	return false
}

// attemptRecover isolates a single Recover call so a panicking strategy
// only loses that attempt.
func attemptRecover(ctx context.Context, s recovery.Strategy, f *fault.Fault) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.Recover(ctx, f)
}

func runFallback(ctx context.Context, action func(ctx context.Context)) {
	defer func() {
		_ = recover()
	}()
	action(ctx)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ShouldEscalate reports whether the fault must end rich-mode operation.
// Pure function over the fault record; callers use it to decide on
// session degradation.
func (h *FaultHandler) ShouldEscalate(f *fault.Fault) bool {
	if f == nil {
		return false
	}
	if f.Severity() == model.SeverityCritical {
		return true
	}
	return f.Category() == model.CategoryInitialization && !f.Recoverable()
}

// Stats returns the fault count per category. Every category is present,
// defaulting to zero.
func (h *FaultHandler) Stats() map[model.Category]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := make(map[model.Category]int, model.CategoryCount)
	for _, c := range model.AllCategories() {
		stats[c] = 0
	}
	for _, f := range h.log {
		stats[f.Category()]++
	}
	return stats
}

// RecentFaults returns up to n faults, most recent last.
// The returned slice is a defensive copy.
func (h *FaultHandler) RecentFaults(n int) []*fault.Fault {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || len(h.log) == 0 {
		return nil
	}
	start := len(h.log) - n
	if start < 0 {
		start = 0
	}
	out := make([]*fault.Fault, len(h.log)-start)
	copy(out, h.log[start:])
	return out
}

// LastFault returns the most recently handled fault, or nil
func (h *FaultHandler) LastFault() *fault.Fault {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.log) == 0 {
		return nil
	}
	return h.log[len(h.log)-1]
}

// ClearLog discards all retained faults
func (h *FaultHandler) ClearLog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = nil
}

// UpdateDegradedConfig merges the patch into the degraded-session
// configuration; unspecified fields keep their current values.
func (h *FaultHandler) UpdateDegradedConfig(p dto.DegradedConfigPatch) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.degraded = h.degraded.Merge(p)
}

// GetDegradedConfig returns a copy of the degraded-session configuration
func (h *FaultHandler) GetDegradedConfig() dto.DegradedConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.degraded
}

// classify derives a fault from a raw error by inspecting the lower-cased
// message and context for substring signals, first match wins. The
// heuristic is fuzzy: a tool error whose message mentions "file" will be
// classified FILE_SYSTEM.
func classify(err error, faultContext string) *fault.Fault {
	msg := strings.ToLower(err.Error())
	ctx := strings.ToLower(faultContext)

	var cat model.Category
	switch {
	case containsAny(msg, "network", "fetch", "connection") || containsAny(ctx, "network", "api"):
		cat = model.CategoryNetwork
	case containsAny(msg, "enoent", "permission", "access", "file") || strings.Contains(ctx, "file"):
		cat = model.CategoryFileSystem
	case strings.Contains(msg, "tool") || containsAny(ctx, "tool", "execution"):
		cat = model.CategoryToolExecution
	case strings.Contains(msg, "config") || strings.Contains(ctx, "config"):
		cat = model.CategoryConfiguration
	case strings.Contains(msg, "init") || containsAny(ctx, "init", "startup"):
		cat = model.CategoryInitialization
	case containsAny(msg, "input", "invalid"):
		cat = model.CategoryInputValidation
	default:
		cat = model.CategoryUnknown
	}

	return fault.New(err.Error(),
		fault.WithCategory(cat),
		fault.WithContext(faultContext),
		fault.WithCause(err),
	)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// streamDisplay is the built-in display used when no display surface is
// injected: one severity-prefixed line per event.
type streamDisplay struct {
	w io.Writer
}

func (d *streamDisplay) DisplayError(f *fault.Fault, context string) {
	if context != "" {
		fmt.Fprintf(d.w, "%s: %s (%s)\n", f.Severity(), f.Message(), context)
		return
	}
	fmt.Fprintf(d.w, "%s: %s\n", f.Severity(), f.Message())
}

func (d *streamDisplay) DisplayWarning(text string) {
	fmt.Fprintf(d.w, "WARN: %s\n", text)
}
