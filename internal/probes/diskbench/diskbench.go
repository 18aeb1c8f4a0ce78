// Package diskbench provides the disk-dd benchmark: sequential write
// and read throughput over a scratch file, measured with dd.
package diskbench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/probes/probeutil"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Name is the benchmark key.
const Name = "disk-dd"

const tool = "dd"

type params struct {
	FileSizeMB int    `mapstructure:"file_size_mb"`
	Dir        string `mapstructure:"dir"`
}

func defaults() params {
	return params{FileSizeMB: 256}
}

// Definition returns the catalog entry for this benchmark.
func Definition() catalog.Definition {
	return catalog.Definition{
		Key:         Name,
		Description: "Sequential disk write/read throughput via dd",
		Categories:  []string{"disk"},
		Requires:    []string{tool},
		Available:   available,
		Run:         run,
	}
}

func targetDir(p params, rc *catalog.RunContext) string {
	if p.Dir != "" {
		return p.Dir
	}
	if rc != nil && rc.ScratchDir != "" {
		return rc.ScratchDir
	}
	return os.TempDir()
}

// available verifies the scratch directory has room for the test file
// plus headroom.
func available(_ context.Context, rc *catalog.RunContext) (bool, string) {
	p := defaults()
	if err := probeutil.DecodeParams(rc.ParamOverrides(Name), &p); err != nil {
		return false, err.Error()
	}
	dir := targetDir(p, rc)

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return false, fmt.Sprintf("cannot stat %s: %v", dir, err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	needed := uint64(p.FileSizeMB) * 1024 * 1024 * 2
	if free < needed {
		return false, fmt.Sprintf("not enough free space in %s for a %d MB test file", dir, p.FileSizeMB)
	}
	return true, ""
}

func run(ctx context.Context, rc *catalog.RunContext) result.Outcome {
	p := defaults()
	if err := probeutil.DecodeParams(rc.ParamOverrides(Name), &p); err != nil {
		return result.MissingResource{Reason: err.Error()}
	}
	dir := targetDir(p, rc)
	parameters := result.Parameters{
		"file_size_mb": p.FileSizeMB,
		"dir":          dir,
	}

	scratch := filepath.Join(dir, fmt.Sprintf(".benchdeck-dd-%d", os.Getpid()))
	// The scratch file is removed on every exit path, faults included.
	defer os.Remove(scratch)

	version := probeutil.Version(ctx, tool, "--version")

	writeArgs := []string{
		"if=/dev/zero",
		"of=" + scratch,
		"bs=1M",
		fmt.Sprintf("count=%d", p.FileSizeMB),
		"conv=fdatasync",
	}
	readArgs := []string{
		"if=" + scratch,
		"of=/dev/null",
		"bs=1M",
	}
	command := probeutil.CommandLine(tool, writeArgs...) + " && " + probeutil.CommandLine(tool, readArgs...)

	writeRaw, writeDuration, err := probeutil.Run(ctx, tool, writeArgs...)
	if err != nil {
		return result.ProcessFailure{
			ExitCode:   probeutil.ExitCode(err),
			Parameters: parameters,
			Command:    command,
			RawOutput:  writeRaw,
			Version:    version,
		}
	}

	if _, err := os.Stat(scratch); err != nil {
		return result.MissingResource{
			Reason:     fmt.Sprintf("test file disappeared: %v", err),
			Parameters: parameters,
		}
	}

	readRaw, readDuration, err := probeutil.Run(ctx, tool, readArgs...)
	raw := writeRaw + readRaw
	if err != nil {
		return result.ProcessFailure{
			ExitCode:   probeutil.ExitCode(err),
			Parameters: parameters,
			Command:    command,
			RawOutput:  raw,
			Version:    version,
		}
	}

	writeRate, err := parseRate(writeRaw)
	if err != nil {
		return result.ParseFailure{
			Reason:     fmt.Sprintf("write pass: %v", err),
			Parameters: parameters,
			Command:    command,
			RawOutput:  raw,
			Version:    version,
		}
	}
	readRate, err := parseRate(readRaw)
	if err != nil {
		return result.ParseFailure{
			Reason:     fmt.Sprintf("read pass: %v", err),
			Parameters: parameters,
			Command:    command,
			RawOutput:  raw,
			Version:    version,
		}
	}

	return result.Ok{
		Metrics: result.Metrics{
			"write_mb_per_second": writeRate,
			"read_mb_per_second":  readRate,
			"file_size_mb":        p.FileSizeMB,
		},
		Parameters: parameters,
		Duration:   writeDuration + readDuration,
		Command:    command,
		RawOutput:  raw,
		Version:    version,
	}
}

var copiedRe = regexp.MustCompile(`(?m)^(\d+) bytes.*copied, ([0-9.]+) s`)

// parseRate computes MB/s from dd's transfer summary line.
func parseRate(output string) (float64, error) {
	m := copiedRe.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("transfer summary not found in dd output")
	}
	bytes, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("bad byte count %q", m[1])
	}
	seconds, err := strconv.ParseFloat(m[2], 64)
	if err != nil || seconds == 0 {
		return 0, fmt.Errorf("bad elapsed time %q", m[2])
	}
	return bytes / 1e6 / seconds, nil
}
