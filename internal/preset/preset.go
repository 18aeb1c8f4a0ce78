// Package preset expands preset names and explicit benchmark keys into
// a concrete, deterministically ordered selection of catalog keys.
package preset

import (
	"sort"

	"github.com/samber/lo"

	"github.com/benchdeck/benchdeck/internal/catalog"
)

// DefaultName is the preset used when neither presets nor explicit
// keys are requested.
const DefaultName = "balanced"

// Kind selects how a preset matches benchmarks.
type Kind string

const (
	// KindAll matches every registered benchmark.
	KindAll Kind = "all"
	// KindCategory matches benchmarks whose category set intersects
	// the preset's categories.
	KindCategory Kind = "category"
	// KindExplicit matches a fixed, curated list of keys.
	KindExplicit Kind = "explicit"
)

// Preset is a named, curated selection of benchmarks.
type Preset struct {
	Name        string
	Description string
	Kind        Kind
	Categories  []string
	Keys        []string
}

// Matches reports whether the preset selects the benchmark with the
// given key and categories.
func (p Preset) Matches(key string, categories []string) bool {
	switch p.Kind {
	case KindAll:
		return true
	case KindCategory:
		return lo.Some(categories, p.Categories)
	case KindExplicit:
		return lo.Contains(p.Keys, key)
	default:
		return false
	}
}

// Resolver expands selection requests against one catalog.
type Resolver struct {
	catalog *catalog.Catalog
	presets []Preset
	byName  map[string]Preset
}

// NewResolver builds a resolver over the given catalog and preset
// table. Preset order is preserved for listing.
func NewResolver(cat *catalog.Catalog, presets []Preset) *Resolver {
	byName := make(map[string]Preset, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}
	return &Resolver{catalog: cat, presets: presets, byName: byName}
}

// Presets returns the preset table in declaration order.
func (r *Resolver) Presets() []Preset {
	return r.presets
}

// Resolve expands preset names and explicit keys into benchmark keys.
//
// Explicit keys, when given, define the selection outright in their
// given order (deduplicated, unknown keys dropped). Otherwise the
// union of all matched preset keys is returned in lexicographic order.
// Unknown preset names contribute nothing and raise nothing. An empty
// request falls back to the "balanced" preset.
func (r *Resolver) Resolve(presetNames, explicitKeys []string) []string {
	if len(explicitKeys) > 0 {
		return lo.Filter(lo.Uniq(explicitKeys), func(key string, _ int) bool {
			return r.catalog.Has(key)
		})
	}

	if len(presetNames) == 0 {
		presetNames = []string{DefaultName}
	}

	selected := map[string]struct{}{}
	for _, name := range presetNames {
		p, ok := r.byName[name]
		if !ok {
			continue
		}
		for _, def := range r.catalog.List() {
			if p.Matches(def.Key, def.Categories) {
				selected[def.Key] = struct{}{}
			}
		}
	}

	keys := lo.Keys(selected)
	sort.Strings(keys)
	return keys
}
