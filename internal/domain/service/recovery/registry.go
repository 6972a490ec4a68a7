package recovery

import "github.com/YoshitsuguKoike/kaiwa/internal/domain/model"

// Registry holds at most one Strategy per fault category.
// The category set is closed, so lookup is a plain array index.
// Mutation is not synchronized; the owning fault handler serializes access.
type Registry struct {
	slots [model.CategoryCount]Strategy
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs a strategy for the category, overwriting any
// existing registration.
func (r *Registry) Register(cat model.Category, s Strategy) {
	r.slots[cat.Index()] = s
}

// Lookup returns the strategy for the category, or nil when none
// is registered.
func (r *Registry) Lookup(cat model.Category) Strategy {
	return r.slots[cat.Index()]
}
