// Package catalog provides the static, ordered registry of benchmark
// definitions. The catalog is built exactly once at process start; a
// duplicate key is a configuration error surfaced before any benchmark
// can run.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/benchdeck/benchdeck/internal/result"
)

// ErrNotFound is returned by ByKey for unregistered benchmark keys.
var ErrNotFound = errors.New("benchmark not found")

// RunContext carries the run-wide settings a benchmark may consult.
type RunContext struct {
	Hostname   string
	ScratchDir string
	// Overrides maps benchmark key to parameter overrides for that
	// benchmark, as given on the command line.
	Overrides map[string]map[string]any
	Logger    *slog.Logger
}

// ParamOverrides returns the parameter overrides for one benchmark,
// possibly nil.
func (rc *RunContext) ParamOverrides(key string) map[string]any {
	if rc == nil || rc.Overrides == nil {
		return nil
	}
	return rc.Overrides[key]
}

// Runner executes one measurement and reports its outcome. Runners do
// not classify failures into result statuses; the engine does.
type Runner func(ctx context.Context, rc *RunContext) result.Outcome

// AvailabilityCheck is an optional benchmark-specific precondition
// beyond mere command presence. It returns false with a reason when
// the benchmark cannot run.
type AvailabilityCheck func(ctx context.Context, rc *RunContext) (bool, string)

// Definition describes one registered benchmark. Definitions are
// immutable after registration.
type Definition struct {
	Key         string `validate:"required"`
	Description string `validate:"required"`
	Categories  []string
	// Presets lists the preset names this benchmark belongs to. The
	// engine stamps them onto every Result.
	Presets []string
	// Requires lists external commands that must be resolvable on PATH
	// before the benchmark is attempted.
	Requires  []string
	Available AvailabilityCheck
	Run       Runner `validate:"required"`
}

// Catalog is an immutable, registration-ordered set of definitions.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

// New validates the definitions and builds a catalog. Order is
// significant: it fixes CLI listing order and report column order.
func New(defs []Definition) (*Catalog, error) {
	validate := validator.New()
	index := make(map[string]int, len(defs))
	for i, def := range defs {
		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("invalid benchmark definition %q: %w", def.Key, err)
		}
		if _, dup := index[def.Key]; dup {
			return nil, fmt.Errorf("duplicate benchmark key %q", def.Key)
		}
		index[def.Key] = i
	}
	return &Catalog{defs: defs, index: index}, nil
}

// List returns all definitions in registration order.
func (c *Catalog) List() []Definition {
	return c.defs
}

// Keys returns all benchmark keys in registration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.defs))
	for i, def := range c.defs {
		keys[i] = def.Key
	}
	return keys
}

// ByKey looks up a definition by key.
func (c *Catalog) ByKey(key string) (Definition, error) {
	i, ok := c.index[key]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return c.defs[i], nil
}

// Has reports whether key is registered.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}
