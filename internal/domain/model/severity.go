package model

// Severity expresses how much a fault threatens the session.
// Values are ordered; CRITICAL faults force escalation.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// IsValid validates the severity
func (s Severity) IsValid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// DefaultSeverity returns the severity assigned to a category when the
// caller does not supply one explicitly.
func DefaultSeverity(c Category) Severity {
	switch c {
	case CategoryInitialization:
		return SeverityCritical
	case CategoryNetwork, CategoryConfiguration:
		return SeverityHigh
	case CategoryFileSystem, CategoryToolExecution:
		return SeverityMedium
	case CategoryInputValidation:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
