package fault

import (
	"errors"
	"testing"
	"time"

	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
)

func TestNew_Defaults(t *testing.T) {
	before := time.Now()
	f := New("something broke")

	if f.Category() != model.CategoryUnknown {
		t.Errorf("Expected UNKNOWN category, got %s", f.Category())
	}
	if f.Severity() != model.SeverityMedium {
		t.Errorf("Expected MEDIUM severity for UNKNOWN, got %s", f.Severity())
	}
	if !f.Recoverable() {
		t.Error("Expected faults to be recoverable by default")
	}
	if f.Context() != "" {
		t.Errorf("Expected empty context, got %q", f.Context())
	}
	if f.Cause() != nil {
		t.Error("Expected nil cause")
	}
	if f.Timestamp().Before(before) {
		t.Error("Expected timestamp set at construction")
	}
	if f.ID().String() == "" {
		t.Error("Expected a fault ID")
	}
}

func TestNew_SeverityDerivedFromCategory(t *testing.T) {
	tests := []struct {
		category model.Category
		expected model.Severity
	}{
		{model.CategoryNetwork, model.SeverityHigh},
		{model.CategoryFileSystem, model.SeverityMedium},
		{model.CategoryInputValidation, model.SeverityLow},
		{model.CategoryInitialization, model.SeverityCritical},
	}
	for _, tt := range tests {
		f := New("x", WithCategory(tt.category))
		if f.Severity() != tt.expected {
			t.Errorf("Expected %s for %s, got %s", tt.expected, tt.category, f.Severity())
		}
	}
}

func TestNew_SeverityOverride(t *testing.T) {
	f := New("x", WithCategory(model.CategoryNetwork), WithSeverity(model.SeverityLow))
	if f.Severity() != model.SeverityLow {
		t.Errorf("Expected explicit severity to win, got %s", f.Severity())
	}
}

func TestFault_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	f := New("send failed",
		WithCategory(model.CategoryNetwork),
		WithContext("agent send"),
		WithCause(cause),
	)

	want := "[HIGH] NETWORK: send failed (agent send)"
	if f.Error() != want {
		t.Errorf("Expected %q, got %q", want, f.Error())
	}
	if !errors.Is(f, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestFault_ErrorWithoutContext(t *testing.T) {
	f := New("oops", WithCategory(model.CategoryUnknown))
	want := "[MEDIUM] UNKNOWN: oops"
	if f.Error() != want {
		t.Errorf("Expected %q, got %q", want, f.Error())
	}
}
