// Package probes assembles the built-in benchmark catalog and the
// preset table.
package probes

import (
	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/preset"
	"github.com/benchdeck/benchdeck/internal/probes/cpubench"
	"github.com/benchdeck/benchdeck/internal/probes/cryptobench"
	"github.com/benchdeck/benchdeck/internal/probes/diskbench"
	"github.com/benchdeck/benchdeck/internal/probes/membench"
	"github.com/benchdeck/benchdeck/internal/probes/netbench"
)

// Definitions returns all built-in benchmarks in registration order.
// Order is significant: it fixes listing order and report columns.
func Definitions() []catalog.Definition {
	return []catalog.Definition{
		cpubench.Definition(),
		membench.Definition(),
		diskbench.Definition(),
		netbench.Definition(),
		cryptobench.Definition(),
	}
}

// Presets returns the built-in preset table.
func Presets() []preset.Preset {
	return []preset.Preset{
		{
			Name:        "all",
			Description: "Every registered benchmark",
			Kind:        preset.KindAll,
		},
		{
			Name:        "balanced",
			Description: "A representative mix of CPU, memory and disk",
			Kind:        preset.KindExplicit,
			Keys:        []string{cpubench.Name, membench.Name, diskbench.Name},
		},
		{
			Name:        "quick",
			Description: "A single fast CPU benchmark",
			Kind:        preset.KindExplicit,
			Keys:        []string{cpubench.Name},
		},
		{
			Name:        "cpu",
			Description: "All CPU-bound benchmarks",
			Kind:        preset.KindCategory,
			Categories:  []string{"cpu"},
		},
		{
			Name:        "memory",
			Description: "All memory benchmarks",
			Kind:        preset.KindCategory,
			Categories:  []string{"memory"},
		},
		{
			Name:        "disk",
			Description: "All disk benchmarks",
			Kind:        preset.KindCategory,
			Categories:  []string{"disk"},
		},
		{
			Name:        "network",
			Description: "All network benchmarks",
			Kind:        preset.KindCategory,
			Categories:  []string{"network"},
		},
	}
}

// Load builds the immutable catalog and its resolver, stamping preset
// membership onto every definition. A duplicate benchmark key fails
// here, before anything can run.
func Load() (*catalog.Catalog, *preset.Resolver, error) {
	defs := Definitions()
	presets := Presets()

	for i := range defs {
		for _, p := range presets {
			if p.Matches(defs[i].Key, defs[i].Categories) {
				defs[i].Presets = append(defs[i].Presets, p.Name)
			}
		}
	}

	cat, err := catalog.New(defs)
	if err != nil {
		return nil, nil, err
	}
	return cat, preset.NewResolver(cat, presets), nil
}
