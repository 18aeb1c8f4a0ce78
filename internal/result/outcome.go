package result

import "time"

// Outcome is the tagged return type of a benchmark runner. The engine
// matches the concrete variant exhaustively; runners never classify
// their own failures into statuses.
type Outcome interface {
	outcome()
}

// Ok reports a completed measurement.
type Ok struct {
	Metrics    Metrics
	Parameters Parameters
	Duration   time.Duration // wall time of the measured operation only
	Command    string
	RawOutput  string
	Version    string
}

// ProcessFailure reports that the underlying tool exited non-zero.
type ProcessFailure struct {
	ExitCode   int
	Parameters Parameters
	Command    string
	RawOutput  string
	Version    string
}

// ParseFailure reports that the tool ran to completion but its output
// could not be interpreted. RawOutput is always carried so the failure
// stays distinguishable from a crash.
type ParseFailure struct {
	Reason     string
	Parameters Parameters
	Command    string
	RawOutput  string
	Version    string
}

// MissingResource reports that an expected file or device vanished at
// run time.
type MissingResource struct {
	Reason     string
	Parameters Parameters
}

func (Ok) outcome()              {}
func (ProcessFailure) outcome()  {}
func (ParseFailure) outcome()    {}
func (MissingResource) outcome() {}
