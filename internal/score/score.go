// Package score turns heterogeneous benchmark metrics into comparable
// scalars and short display strings. Benchmarks without a rule stay
// describable but are not comparable.
package score

import (
	"encoding/json"
	"fmt"
	"strconv"

	units "github.com/docker/go-units"
	"github.com/shopspring/decimal"

	"github.com/benchdeck/benchdeck/internal/result"
)

// Polarity declares which direction of a score is an improvement.
type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
)

// Rule maps one benchmark key to its comparable metric. Candidates are
// tried in order; the first present numeric value wins.
type Rule struct {
	Candidates []string
	Polarity   Polarity
	Format     func(v float64) string
}

// Table maps benchmark key to scoring rule.
type Table map[string]Rule

// Placeholder is the cell text for a benchmark a run never executed.
const Placeholder = "—"

// Default returns the scoring rules for the built-in benchmarks.
func Default() Table {
	return Table{
		"cpu-sysbench": {
			Candidates: []string{"events_per_second"},
			Polarity:   HigherIsBetter,
			Format: func(v float64) string {
				return round(v, 1) + " ev/s"
			},
		},
		"memory-sysbench": {
			Candidates: []string{"mib_per_second"},
			Polarity:   HigherIsBetter,
			Format: func(v float64) string {
				return round(v, 1) + " MiB/s"
			},
		},
		"disk-dd": {
			Candidates: []string{"write_mb_per_second", "read_mb_per_second"},
			Polarity:   HigherIsBetter,
			Format: func(v float64) string {
				return round(v, 1) + " MB/s"
			},
		},
		"net-iperf3": {
			Candidates: []string{"receiver_bits_per_second", "sender_bits_per_second"},
			Polarity:   HigherIsBetter,
			Format: func(v float64) string {
				return round(v/1e6, 0) + " Mbit/s"
			},
		},
		"crypto-openssl": {
			Candidates: []string{"sha256_16k_bytes_per_second"},
			Polarity:   HigherIsBetter,
			Format: func(v float64) string {
				return units.HumanSize(v) + "/s"
			},
		},
	}
}

// Extract returns the comparable scalar for a result, walking the
// rule's candidates in priority order. The second return is false when
// the result is not ok, has no rule, or carries no candidate metric.
func (t Table) Extract(r result.Result) (float64, bool) {
	if r.Status != result.StatusOK {
		return 0, false
	}
	rule, ok := t[r.Name]
	if !ok {
		return 0, false
	}
	for _, name := range rule.Candidates {
		if v, ok := asFloat(r.Metrics[name]); ok {
			return v, true
		}
	}
	return 0, false
}

// Cell renders a short human-readable summary of one result, suitable
// for a comparison matrix cell.
func (t Table) Cell(r result.Result) string {
	switch r.Status {
	case result.StatusSkipped:
		return "skipped"
	case result.StatusError:
		return "error"
	}
	if v, ok := t.Extract(r); ok {
		return t[r.Name].Format(v)
	}
	// Describable fallback for ok results without a scoring rule.
	return fmt.Sprintf("ok (%ss)", round(r.DurationSeconds, 1))
}

func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
