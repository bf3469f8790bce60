package mcgen

import (
	"regexp"
	"strings"
)

// Recorder observes the passes run by Optimize.
type Recorder interface {
	// RecordPass is called once per pass per function in execution order.
	RecordPass(function, pass string)
}

// PassEntry is a single recorded pass execution.
type PassEntry struct {
	Function string
	Pass     string
}

// PassLog is a Recorder that keeps every entry.
type PassLog struct {
	Entries []PassEntry
}

// RecordPass implements Recorder.
func (pl *PassLog) RecordPass(function, pass string) {
	pl.Entries = append(pl.Entries, PassEntry{Function: function, Pass: pass})
}

// Functions returns the recorded function names in first-seen order.
func (pl *PassLog) Functions() []string {
	seen := make(map[string]bool)

	var fns []string
	for _, e := range pl.Entries {
		if !seen[e.Function] {
			seen[e.Function] = true
			fns = append(fns, e.Function)
		}
	}

	return fns
}

// ForFunction returns the passes recorded for fn in order.
func (pl *PassLog) ForFunction(fn string) []string {
	var passes []string
	for _, e := range pl.Entries {
		if e.Function == fn {
			passes = append(passes, e.Pass)
		}
	}

	return passes
}

// -----------------------------------------------------------------------------

var passLine = regexp.MustCompile(`Running pass: (\S+) on (\S+)`)

// replayPassLog feeds the pipeline's passes found in LLVM's debug log to r.
// Adaptors and analyses LLVM logs alongside them are skipped.
func replayPassLog(log string, pipeline Pipeline, r Recorder) int {
	known := make(map[string]bool, len(pipeline))
	for _, p := range pipeline {
		known[p.Class] = true
	}

	n := 0
	for _, line := range strings.Split(log, "\n") {
		m := passLine.FindStringSubmatch(line)
		if m == nil || !known[m[1]] {
			continue
		}

		r.RecordPass(m[2], m[1])
		n++
	}

	return n
}
