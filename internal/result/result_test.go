package result

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCounts(t *testing.T) {
	rep := Report{
		Benchmarks: []Result{
			{Name: "a", Status: StatusOK},
			{Name: "b", Status: StatusOK},
			{Name: "c", Status: StatusSkipped},
			{Name: "d", Status: StatusError},
		},
	}
	ok, skipped, errors := rep.Counts()
	if ok != 2 || skipped != 1 || errors != 1 {
		t.Errorf("Counts = %d/%d/%d, want 2/1/1", ok, skipped, errors)
	}
}

func TestCountsEmpty(t *testing.T) {
	var rep Report
	ok, skipped, errors := rep.Counts()
	if ok != 0 || skipped != 0 || errors != 0 {
		t.Errorf("Counts on empty report = %d/%d/%d", ok, skipped, errors)
	}
}

func TestResultJSONOmitsEmptyOptionals(t *testing.T) {
	r := Result{
		Name:       "cpu-sysbench",
		Status:     StatusOK,
		Presets:    []string{"all"},
		Metrics:    Metrics{},
		Parameters: Parameters{},
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	for _, absent := range []string{"message", "raw_output", "version", "categories"} {
		if strings.Contains(s, `"`+absent+`"`) {
			t.Errorf("empty %s should be omitted: %s", absent, s)
		}
	}
	// Empty maps still serialize so consumers can rely on the fields.
	for _, present := range []string{`"metrics":{}`, `"parameters":{}`, `"duration_seconds":0`} {
		if !strings.Contains(s, present) {
			t.Errorf("expected %s in %s", present, s)
		}
	}
}
