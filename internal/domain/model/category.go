package model

// Category classifies a fault by the kind of failure that produced it.
// The set is closed; the recovery registry indexes strategies by Category.
type Category string

const (
	CategoryNetwork         Category = "NETWORK"
	CategoryFileSystem      Category = "FILE_SYSTEM"
	CategoryToolExecution   Category = "TOOL_EXECUTION"
	CategoryConfiguration   Category = "CONFIGURATION"
	CategoryInitialization  Category = "INITIALIZATION"
	CategoryInputValidation Category = "INPUT_VALIDATION"
	CategoryUnknown         Category = "UNKNOWN"
)

// CategoryCount is the number of fault categories.
// It sizes the recovery strategy registry.
const CategoryCount = 7

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IsValid validates the category
func (c Category) IsValid() bool {
	switch c {
	case CategoryNetwork, CategoryFileSystem, CategoryToolExecution,
		CategoryConfiguration, CategoryInitialization, CategoryInputValidation,
		CategoryUnknown:
		return true
	default:
		return false
	}
}

// Index returns the registry slot for the category.
// Invalid categories map to the UNKNOWN slot.
func (c Category) Index() int {
	switch c {
	case CategoryNetwork:
		return 0
	case CategoryFileSystem:
		return 1
	case CategoryToolExecution:
		return 2
	case CategoryConfiguration:
		return 3
	case CategoryInitialization:
		return 4
	case CategoryInputValidation:
		return 5
	default:
		return 6
	}
}

// AllCategories returns every category in registry order
func AllCategories() []Category {
	return []Category{
		CategoryNetwork,
		CategoryFileSystem,
		CategoryToolExecution,
		CategoryConfiguration,
		CategoryInitialization,
		CategoryInputValidation,
		CategoryUnknown,
	}
}
