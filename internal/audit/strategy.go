package audit

import (
	"sort"
	"strings"

	"github.com/simaudit-dev/simaudit/internal/model"
)

// Input bundles everything a strategy may inspect. All fields are read-only.
type Input struct {
	Events     []model.Event
	Snapshots  []model.Snapshot
	Boundaries []model.MonthBoundary
}

// Finding is one reportable result from a strategy run.
type Finding struct {
	Strategy  string `yaml:"strategy"`
	Iteration int    `yaml:"iteration"`
	Detail    string `yaml:"detail"`
}

// Strategy is a named invariant check over a reconstructed run. The same
// auditor harness drives total-wealth, monthly-accounting, and hidden-expense
// checks rather than three near-duplicate tools.
type Strategy interface {
	Name() string
	Check(in Input) []Finding
}

// Registry holds named strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy. Panics on duplicate name.
func (r *Registry) Register(s Strategy) {
	key := strings.ToLower(s.Name())
	if _, ok := r.strategies[key]; ok {
		panic("duplicate strategy: " + key)
	}
	r.strategies[key] = s
}

// Get returns the strategy for name, or nil.
func (r *Registry) Get(name string) Strategy {
	return r.strategies[strings.ToLower(name)]
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
