// Package engine runs selected benchmarks strictly sequentially and
// classifies every outcome into exactly one Result. Concurrent
// resource-intensive measurements would invalidate each other, so the
// engine never overlaps benchmarks; one failing or skipped benchmark
// never aborts the rest of the batch.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Engine executes benchmarks from one catalog.
type Engine struct {
	catalog *catalog.Catalog

	// LookPath resolves external commands for capability checks.
	// Replaced in tests to simulate missing tools.
	LookPath func(name string) (string, error)
	Logger   *slog.Logger
}

// New creates an engine over the given catalog.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{
		catalog:  cat,
		LookPath: exec.LookPath,
		Logger:   slog.Default(),
	}
}

// Execute runs each selected key in order and returns one Result per
// key. It never returns early: a fault inside a single benchmark's
// checks or runner is contained and recorded as that benchmark's
// Result.
func (e *Engine) Execute(ctx context.Context, rc *catalog.RunContext, keys []string) []result.Result {
	results := make([]result.Result, 0, len(keys))
	for _, key := range keys {
		start := time.Now()
		res := e.runOne(ctx, rc, key)
		e.Logger.Info("benchmark finished",
			"name", res.Name,
			"status", res.Status,
			"elapsed", time.Since(start).Round(time.Millisecond),
			"message", res.Message,
		)
		results = append(results, res)
	}
	return results
}

func (e *Engine) runOne(ctx context.Context, rc *catalog.RunContext, key string) (res result.Result) {
	// No fault inside a benchmark's checks or runner may escape the
	// engine and abort the batch.
	defer func() {
		if r := recover(); r != nil {
			res = result.Result{
				Name:       key,
				Status:     result.StatusError,
				Metrics:    result.Metrics{},
				Parameters: result.Parameters{},
				Message:    fmt.Sprintf("internal fault: %v", r),
			}
			e.stamp(&res, key)
		}
	}()

	def, err := e.catalog.ByKey(key)
	if err != nil {
		return result.Result{
			Name:       key,
			Status:     result.StatusSkipped,
			Metrics:    result.Metrics{},
			Parameters: result.Parameters{},
			Message:    fmt.Sprintf("benchmark %q is not registered", key),
		}
	}

	for _, command := range def.Requires {
		if _, err := e.LookPath(command); err != nil {
			res = result.Result{
				Name:       key,
				Status:     result.StatusSkipped,
				Metrics:    result.Metrics{},
				Parameters: result.Parameters{},
				Message:    fmt.Sprintf("%s not found", command),
			}
			e.stamp(&res, key)
			return res
		}
	}

	if def.Available != nil {
		if ok, reason := def.Available(ctx, rc); !ok {
			res = result.Result{
				Name:       key,
				Status:     result.StatusSkipped,
				Metrics:    result.Metrics{},
				Parameters: result.Parameters{},
				Message:    reason,
			}
			e.stamp(&res, key)
			return res
		}
	}

	res = classify(key, def.Run(ctx, rc))
	e.stamp(&res, key)
	return res
}

// stamp overwrites category and preset bookkeeping with the
// authoritative values from the definition.
func (e *Engine) stamp(res *result.Result, key string) {
	if def, err := e.catalog.ByKey(key); err == nil {
		res.Categories = def.Categories
		res.Presets = def.Presets
	}
}

func classify(key string, out result.Outcome) result.Result {
	switch o := out.(type) {
	case result.Ok:
		return result.Result{
			Name:            key,
			Status:          result.StatusOK,
			Metrics:         orEmptyMetrics(o.Metrics),
			Parameters:      orEmpty(o.Parameters),
			DurationSeconds: o.Duration.Seconds(),
			Command:         o.Command,
			RawOutput:       o.RawOutput,
			Version:         o.Version,
		}
	case result.ProcessFailure:
		return result.Result{
			Name:       key,
			Status:     result.StatusError,
			Metrics:    result.Metrics{},
			Parameters: orEmpty(o.Parameters),
			Command:    o.Command,
			Message:    fmt.Sprintf("command exited with status %d", o.ExitCode),
			RawOutput:  o.RawOutput,
			Version:    o.Version,
		}
	case result.ParseFailure:
		return result.Result{
			Name:       key,
			Status:     result.StatusError,
			Metrics:    result.Metrics{},
			Parameters: orEmpty(o.Parameters),
			Command:    o.Command,
			Message:    fmt.Sprintf("could not parse output: %s", o.Reason),
			RawOutput:  o.RawOutput,
			Version:    o.Version,
		}
	case result.MissingResource:
		return result.Result{
			Name:       key,
			Status:     result.StatusSkipped,
			Metrics:    result.Metrics{},
			Parameters: orEmpty(o.Parameters),
			Message:    o.Reason,
		}
	case nil:
		return result.Result{
			Name:       key,
			Status:     result.StatusError,
			Metrics:    result.Metrics{},
			Parameters: result.Parameters{},
			Message:    "runner returned no outcome",
		}
	default:
		return result.Result{
			Name:       key,
			Status:     result.StatusError,
			Metrics:    result.Metrics{},
			Parameters: result.Parameters{},
			Message:    fmt.Sprintf("unexpected outcome %T", o),
		}
	}
}

func orEmpty(p result.Parameters) result.Parameters {
	if p == nil {
		return result.Parameters{}
	}
	return p
}

func orEmptyMetrics(m result.Metrics) result.Metrics {
	if m == nil {
		return result.Metrics{}
	}
	return m
}
