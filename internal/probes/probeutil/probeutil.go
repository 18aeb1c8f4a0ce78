// Package probeutil holds the helpers shared by the benchmark probe
// packages: parameter override decoding and subprocess plumbing.
package probeutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DecodeParams merges parameter overrides into a probe's default
// params struct. String values are coerced into the target types so
// command-line overrides like seconds=5 just work.
func DecodeParams(overrides map[string]any, out any) error {
	if len(overrides) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("decode parameter overrides: %w", err)
	}
	return nil
}

// Run executes a tool, capturing interleaved stdout and stderr, and
// returns the raw output plus the wall time of the invocation.
func Run(ctx context.Context, name string, args ...string) (raw string, duration time.Duration, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err = cmd.Run()
	return out.String(), time.Since(start), err
}

// ExitCode extracts the exit status from a command error, -1 when the
// process never ran.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// CommandLine renders the invocation for the report.
func CommandLine(name string, args ...string) string {
	return name + " " + strings.Join(args, " ")
}

// Version returns the first line the tool prints for the given version
// arguments, empty when it cannot be determined.
func Version(ctx context.Context, name string, args ...string) string {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line
}
