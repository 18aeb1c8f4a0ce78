// Package netbench provides the net-iperf3 benchmark: loopback TCP
// throughput between a short-lived iperf3 server and client pair. The
// server is benchmark-scoped: it is terminated and its port released
// on every exit path.
package netbench

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/probes/probeutil"
	"github.com/benchdeck/benchdeck/internal/result"
)

// Name is the benchmark key.
const Name = "net-iperf3"

const tool = "iperf3"

const (
	readinessAttempts = 50
	readinessDelay    = 100 * time.Millisecond
)

type params struct {
	Seconds int `mapstructure:"seconds"`
	Port    int `mapstructure:"port"`
}

func defaults() params {
	return params{Seconds: 5}
}

// Definition returns the catalog entry for this benchmark.
func Definition() catalog.Definition {
	return catalog.Definition{
		Key:         Name,
		Description: "Loopback TCP throughput via an iperf3 server/client pair",
		Categories:  []string{"network"},
		Requires:    []string{tool},
		Run:         run,
	}
}

func run(ctx context.Context, rc *catalog.RunContext) result.Outcome {
	p := defaults()
	if err := probeutil.DecodeParams(rc.ParamOverrides(Name), &p); err != nil {
		return result.MissingResource{Reason: err.Error()}
	}
	if p.Port == 0 {
		port, err := freePort()
		if err != nil {
			return result.MissingResource{Reason: fmt.Sprintf("no free loopback port: %v", err)}
		}
		p.Port = port
	}
	parameters := result.Parameters{
		"seconds": p.Seconds,
		"port":    p.Port,
	}

	version := probeutil.Version(ctx, tool, "--version")

	// One-off server: -1 makes iperf3 exit after a single client.
	server := exec.CommandContext(ctx, tool, "-s", "-p", fmt.Sprint(p.Port), "-1")
	if err := server.Start(); err != nil {
		return result.ProcessFailure{
			ExitCode:   -1,
			Parameters: parameters,
			Command:    probeutil.CommandLine(tool, "-s", "-p", fmt.Sprint(p.Port), "-1"),
			RawOutput:  err.Error(),
			Version:    version,
		}
	}
	defer func() {
		// Terminate regardless of how we leave so the port is freed.
		_ = server.Process.Kill()
		_ = server.Wait()
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", p.Port)
	if !waitReady(addr) {
		return result.ProcessFailure{
			ExitCode:   -1,
			Parameters: parameters,
			Command:    probeutil.CommandLine(tool, "-s", "-p", fmt.Sprint(p.Port), "-1"),
			RawOutput:  fmt.Sprintf("server did not accept connections on %s", addr),
			Version:    version,
		}
	}

	clientArgs := []string{
		"-c", "127.0.0.1",
		"-p", fmt.Sprint(p.Port),
		"-t", fmt.Sprint(p.Seconds),
		"-J",
	}
	command := probeutil.CommandLine(tool, clientArgs...)

	raw, duration, err := probeutil.Run(ctx, tool, clientArgs...)
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

func freePort() (int, error) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port, nil
}

// waitReady polls the server socket a bounded number of times.
func waitReady(addr string) bool {
	for i := 0; i < readinessAttempts; i++ {
		conn, err := net.DialTimeout("tcp", addr, readinessDelay)
		if err == nil {
			conn.Close()
			return true
		}
		time.Sleep(readinessDelay)
	}
	return false
}

// parse extracts throughput from iperf3's JSON output.
func parse(output string) (result.Metrics, error) {
	var report struct {
		End struct {
			SumSent struct {
				BitsPerSecond float64 `json:"bits_per_second"`
				Retransmits   int     `json:"retransmits"`
			} `json:"sum_sent"`
			SumReceived struct {
				BitsPerSecond float64 `json:"bits_per_second"`
			} `json:"sum_received"`
		} `json:"end"`
	}
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		return nil, fmt.Errorf("bad iperf3 JSON: %w", err)
	}
	if report.End.SumSent.BitsPerSecond == 0 && report.End.SumReceived.BitsPerSecond == 0 {
		return nil, fmt.Errorf("no throughput summary in iperf3 output")
	}
	return result.Metrics{
		"sender_bits_per_second":   report.End.SumSent.BitsPerSecond,
		"receiver_bits_per_second": report.End.SumReceived.BitsPerSecond,
		"retransmits":              report.End.SumSent.Retransmits,
	}, nil
}
