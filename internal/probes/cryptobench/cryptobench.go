// Package cryptobench provides the crypto-openssl benchmark: digest
// throughput measured with openssl speed.
package cryptobench

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/probes/probeutil"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Name is the benchmark key.
const Name = "crypto-openssl"

const tool = "openssl"

type params struct {
	Algorithm string `mapstructure:"algorithm"`
}

func defaults() params {
	return params{Algorithm: "sha256"}
}

// Definition returns the catalog entry for this benchmark.
func Definition() catalog.Definition {
	return catalog.Definition{
		Key:         Name,
		Description: "Digest throughput via openssl speed",
		Categories:  []string{"cpu", "crypto"},
		Requires:    []string{tool},
		Run:         run,
	}
}

func run(ctx context.Context, rc *catalog.RunContext) result.Outcome {
	p := defaults()
	if err := probeutil.DecodeParams(rc.ParamOverrides(Name), &p); err != nil {
		return result.MissingResource{Reason: err.Error()}
	}
	parameters := result.Parameters{"algorithm": p.Algorithm}

	args := []string{"speed", "-elapsed", "-evp", p.Algorithm}
	command := probeutil.CommandLine(tool, args...)
	version := probeutil.Version(ctx, tool, "version")

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

	metrics, err := parse(raw, p.Algorithm)
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

// parse extracts the throughput row from openssl speed output. The
// final row lists throughput per block size, smallest first, with a
// "k" suffix meaning thousand bytes per second.
func parse(output, algorithm string) (result.Metrics, error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != algorithm {
			continue
		}
		smallest, err := throughput(fields[1])
		if err != nil {
			return nil, err
		}
		largest, err := throughput(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		return result.Metrics{
			fmt.Sprintf("%s_16b_bytes_per_second", algorithm): smallest,
			fmt.Sprintf("%s_16k_bytes_per_second", algorithm): largest,
		}, nil
	}
	return nil, fmt.Errorf("no throughput row for %s in openssl output", algorithm)
}

func throughput(field string) (float64, error) {
	value, ok := strings.CutSuffix(field, "k")
	if !ok {
		return 0, fmt.Errorf("unexpected throughput field %q", field)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("bad throughput value %q", field)
	}
	return v * 1000, nil
}
