package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/result"
)

func newEngine(t *testing.T, defs []catalog.Definition) *Engine {
	t.Helper()
	cat, err := catalog.New(defs)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	e := New(cat)
	// Pretend every required command exists unless a test overrides.
	e.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	return e
}

func okRunner(metrics result.Metrics) catalog.Runner {
	return func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
		return result.Ok{
			Metrics:    metrics,
			Parameters: result.Parameters{"seconds": 1},
			Duration:   1500 * time.Millisecond,
			Command:    "fake run",
			RawOutput:  "fake output",
			Version:    "fake 1.0",
		}
	}
}

func TestExecuteScenario(t *testing.T) {
	// probeA succeeds; probeB's required command is absent. The batch
	// must complete with exactly one result per key, in order.
	spyInvoked := false
	e := newEngine(t, []catalog.Definition{
		{Key: "probeA", Description: "d", Run: okRunner(result.Metrics{"x": 10})},
		{Key: "probeB", Description: "d", Requires: []string{"missing-tool"},
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				spyInvoked = true
				return result.Ok{}
			}},
	})
	e.LookPath = func(name string) (string, error) {
		if name == "missing-tool" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	results := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probeA", "probeB"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Name != "probeA" || results[0].Status != result.StatusOK {
		t.Errorf("probeA: got %s/%s", results[0].Name, results[0].Status)
	}
	if got := results[0].Metrics["x"]; got != 10 {
		t.Errorf("probeA metrics[x] = %v, want 10", got)
	}
	if results[0].DurationSeconds != 1.5 {
		t.Errorf("probeA duration = %v, want 1.5", results[0].DurationSeconds)
	}

	if results[1].Name != "probeB" || results[1].Status != result.StatusSkipped {
		t.Errorf("probeB: got %s/%s", results[1].Name, results[1].Status)
	}
	if !strings.Contains(results[1].Message, "not found") {
		t.Errorf("expected 'not found' in message, got: %s", results[1].Message)
	}
	if spyInvoked {
		t.Error("runner must not be invoked when a required command is missing")
	}
}

func TestExecuteAvailabilityCheck(t *testing.T) {
	spyInvoked := false
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Available: func(ctx context.Context, rc *catalog.RunContext) (bool, string) {
				return false, "device busy"
			},
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				spyInvoked = true
				return result.Ok{}
			}},
	})

	results := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})
	if results[0].Status != result.StatusSkipped {
		t.Errorf("expected skipped, got %s", results[0].Status)
	}
	if results[0].Message != "device busy" {
		t.Errorf("unexpected message: %s", results[0].Message)
	}
	if spyInvoked {
		t.Error("runner must not be invoked when availability check fails")
	}
}

func TestExecuteProcessFailure(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				return result.ProcessFailure{
					ExitCode:  2,
					Command:   "tool run",
					RawOutput: "partial output before crash",
				}
			}},
	})

	results := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})
	res := results[0]
	if res.Status != result.StatusError {
		t.Errorf("expected error, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "status 2") {
		t.Errorf("expected exit status in message, got: %s", res.Message)
	}
	if res.RawOutput != "partial output before crash" {
		t.Errorf("raw output must be preserved, got: %q", res.RawOutput)
	}
}

func TestExecuteParseFailure(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				return result.ParseFailure{Reason: "no summary line", RawOutput: "garbled"}
			}},
	})

	res := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})[0]
	if res.Status != result.StatusError {
		t.Errorf("expected error, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "no summary line") {
		t.Errorf("expected parse reason in message, got: %s", res.Message)
	}
	if res.RawOutput != "garbled" {
		t.Errorf("raw output must be retained for parse failures, got %q", res.RawOutput)
	}
}

func TestExecuteMissingResource(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				return result.MissingResource{Reason: "test file disappeared"}
			}},
	})

	res := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})[0]
	if res.Status != result.StatusSkipped {
		t.Errorf("expected skipped, got %s", res.Status)
	}
	if res.Message != "test file disappeared" {
		t.Errorf("unexpected message: %s", res.Message)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "panics", Description: "d",
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				panic("boom")
			}},
		{Key: "after", Description: "d", Run: okRunner(nil)},
	})

	results := e.Execute(context.Background(), &catalog.RunContext{}, []string{"panics", "after"})
	if len(results) != 2 {
		t.Fatalf("a panicking probe must not abort the batch, got %d results", len(results))
	}
	if results[0].Status != result.StatusError {
		t.Errorf("expected error for panicking probe, got %s", results[0].Status)
	}
	if !strings.Contains(results[0].Message, "boom") {
		t.Errorf("expected panic value in message, got: %s", results[0].Message)
	}
	if results[1].Status != result.StatusOK {
		t.Errorf("probe after the panic must still run, got %s", results[1].Status)
	}
}

func TestExecuteNilOutcome(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				return nil
			}},
	})

	res := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})[0]
	if res.Status != result.StatusError {
		t.Errorf("expected error for nil outcome, got %s", res.Status)
	}
}

func TestExecuteStampsCategoriesAndPresets(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "probe", Description: "d",
			Categories: []string{"cpu"},
			Presets:    []string{"all", "quick"},
			Run: func(ctx context.Context, rc *catalog.RunContext) result.Outcome {
				// Runners do not know their own bookkeeping; whatever
				// they report is overwritten.
				return result.Ok{}
			}},
	})

	res := e.Execute(context.Background(), &catalog.RunContext{}, []string{"probe"})[0]
	if len(res.Categories) != 1 || res.Categories[0] != "cpu" {
		t.Errorf("categories not stamped: %v", res.Categories)
	}
	if len(res.Presets) != 2 || res.Presets[0] != "all" {
		t.Errorf("presets not stamped: %v", res.Presets)
	}
}

func TestExecuteParametersAlwaysPresent(t *testing.T) {
	e := newEngine(t, []catalog.Definition{
		{Key: "skipme", Description: "d", Requires: []string{"gone"},
			Run: okRunner(nil)},
	})
	e.LookPath = func(name string) (string, error) { return "", errors.New("not found") }

	res := e.Execute(context.Background(), &catalog.RunContext{}, []string{"skipme"})[0]
	if res.Parameters == nil {
		t.Error("parameters must be present regardless of status")
	}
	if res.Metrics == nil || len(res.Metrics) != 0 {
		t.Errorf("metrics must be empty for skipped results, got %v", res.Metrics)
	}
}
