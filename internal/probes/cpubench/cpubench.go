// Package cpubench provides the cpu-sysbench benchmark: prime-number
// CPU throughput measured with sysbench.
package cpubench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/probes/probeutil"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Name is the benchmark key.
const Name = "cpu-sysbench"

const tool = "sysbench"

type params struct {
	Seconds  int `mapstructure:"seconds"`
	Threads  int `mapstructure:"threads"`
	MaxPrime int `mapstructure:"max_prime"`
}

func defaults() params {
	return params{Seconds: 10, Threads: runtime.NumCPU(), MaxPrime: 20000}
}

// Definition returns the catalog entry for this benchmark.
func Definition() catalog.Definition {
	return catalog.Definition{
		Key:         Name,
		Description: "CPU prime-factorization throughput via sysbench",
		Categories:  []string{"cpu"},
		Requires:    []string{tool},
		Run:         run,
	}
}

func run(ctx context.Context, rc *catalog.RunContext) result.Outcome {
	p := defaults()
	if err := probeutil.DecodeParams(rc.ParamOverrides(Name), &p); err != nil {
		return result.MissingResource{Reason: err.Error()}
	}
	parameters := result.Parameters{
		"seconds":   p.Seconds,
		"threads":   p.Threads,
		"max_prime": p.MaxPrime,
	}

	args := []string{
		"cpu",
		fmt.Sprintf("--time=%d", p.Seconds),
		fmt.Sprintf("--threads=%d", p.Threads),
		fmt.Sprintf("--cpu-max-prime=%d", p.MaxPrime),
		"run",
	}
	command := probeutil.CommandLine(tool, args...)
	version := probeutil.Version(ctx, tool, "--version")

	raw, duration, err := probeutil.Run(ctx, tool, args...)
	if err != nil {
		return result.ProcessFailure{
			ExitCode:   probeutil.ExitCode(err),
			Parameters: parameters,
			Command:    command,
			RawOutput:  raw,
			Version:    version,
		}
	}

	metrics, err := parse(raw)
	if err != nil {
		return result.ParseFailure{
			Reason:     err.Error(),
			Parameters: parameters,
			Command:    command,
			RawOutput:  raw,
			Version:    version,
		}
	}

	return result.Ok{
		Metrics:    metrics,
		Parameters: parameters,
		Duration:   duration,
		Command:    command,
		RawOutput:  raw,
		Version:    version,
	}
}

// parse extracts metrics from sysbench cpu output.
func parse(output string) (result.Metrics, error) {
	metrics := result.Metrics{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "events per second:"); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, fmt.Errorf("bad events per second value %q", strings.TrimSpace(value))
			}
			metrics["events_per_second"] = v
		}
		if value, ok := strings.CutPrefix(line, "total number of events:"); ok {
			if v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
				metrics["total_events"] = v
			}
		}
	}
	if _, ok := metrics["events_per_second"]; !ok {
		return nil, errors.New("events per second not found in sysbench output")
	}
	return metrics, nil
}
