// Package membench provides the memory-sysbench benchmark: sequential
// memory write throughput measured with sysbench.
package membench

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strconv"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/probes/probeutil"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Name is the benchmark key.
const Name = "memory-sysbench"

const tool = "sysbench"

type params struct {
	Seconds    int    `mapstructure:"seconds"`
	Threads    int    `mapstructure:"threads"`
	BlockSize  string `mapstructure:"block_size"`
	TotalSize  string `mapstructure:"total_size"`
	Operation  string `mapstructure:"operation"`
	AccessMode string `mapstructure:"access_mode"`
}

func defaults() params {
	return params{
		Seconds:    10,
		Threads:    runtime.NumCPU(),
		BlockSize:  "1K",
		TotalSize:  "100G",
		Operation:  "write",
		AccessMode: "seq",
	}
}

// Definition returns the catalog entry for this benchmark.
func Definition() catalog.Definition {
	return catalog.Definition{
		Key:         Name,
		Description: "Memory bandwidth via sysbench",
		Categories:  []string{"memory"},
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
		"seconds":     p.Seconds,
		"threads":     p.Threads,
		"block_size":  p.BlockSize,
		"total_size":  p.TotalSize,
		"operation":   p.Operation,
		"access_mode": p.AccessMode,
	}

	args := []string{
		"memory",
		fmt.Sprintf("--time=%d", p.Seconds),
		fmt.Sprintf("--threads=%d", p.Threads),
		fmt.Sprintf("--memory-block-size=%s", p.BlockSize),
		fmt.Sprintf("--memory-total-size=%s", p.TotalSize),
		fmt.Sprintf("--memory-oper=%s", p.Operation),
		fmt.Sprintf("--memory-access-mode=%s", p.AccessMode),
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

var (
	throughputRe = regexp.MustCompile(`\(([0-9.]+) MiB/sec\)`)
	operationsRe = regexp.MustCompile(`Total operations: (\d+)`)
)

// parse extracts metrics from sysbench memory output.
func parse(output string) (result.Metrics, error) {
	metrics := result.Metrics{}
	if m := throughputRe.FindStringSubmatch(output); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad throughput value %q", m[1])
		}
		metrics["mib_per_second"] = v
	}
	if m := operationsRe.FindStringSubmatch(output); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			metrics["total_operations"] = v
		}
	}
	if _, ok := metrics["mib_per_second"]; !ok {
		return nil, errors.New("MiB/sec throughput not found in sysbench output")
	}
	return metrics, nil
}
