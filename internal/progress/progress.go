// Package progress defines the stage-reporting contract the
// orchestrator pushes updates through, supplemented from
// generate_full_timetable.py's progress prints (spec.md §4.6).
package progress

import "sync"

// Sink receives one report per stage transition. It returns true if
// the run should cancel. The orchestrator checks this after its 10%,
// 40%, 60% and 85% stage reports and stops the run at that point; it
// ignores the return value of the per-generation GGA reports and of
// the final 100% report, so a GGA pass, once started, runs to its end.
type Sink interface {
	Report(term int, percent int, stage, detail string) (cancel bool)
}

// Entry is one recorded report, for tests and the in-memory Recorder.
type Entry struct {
	Term    int
	Percent int
	Stage   string
	Detail  string
}

// Recorder is an in-memory Sink that never cancels, used by tests that
// need to assert on the stage sequence a run produced.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report appends the entry and never cancels.
func (r *Recorder) Report(term, percent int, stage, detail string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Term: term, Percent: percent, Stage: stage, Detail: detail})
	return false
}

// Entries returns every report recorded so far, in order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Noop is a Sink that discards every report and never cancels, for
// callers that don't need progress feedback.
var Noop Sink = noopSink{}

type noopSink struct{}

func (noopSink) Report(int, int, string, string) bool { return false }
