package discovery

import (
	"fmt"
	"strings"
	"sync"
)

var (
	lastReportMu sync.RWMutex
	lastReport   Report
)

// SetLastReport records r as the most recent discovery run's report, for
// later retrieval by the get_discovery_report tool. Load does not call
// this itself so that callers who run Load more than once (tests, hot
// reload) can decide whether a given run should become "the" report.
func SetLastReport(r Report) {
	lastReportMu.Lock()
	defer lastReportMu.Unlock()
	lastReport = r
}

// LastReport returns the report most recently recorded via
// SetLastReport, or a zero Report if none has been recorded yet.
func LastReport() Report {
	lastReportMu.RLock()
	defer lastReportMu.RUnlock()
	return lastReport
}

// Summary renders a human-readable one-paragraph digest of a discovery
// run, suitable for a single structured log line at startup.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "discovered %d files: ", r.FilesSeen)

	kinds := make([]string, 0, len(r.ByKind))
	for kind, count := range r.ByKind {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, count))
	}
	b.WriteString(strings.Join(kinds, " "))

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, ", %d warnings", len(r.Warnings))
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, ", %d failures", len(r.Failures))
	}
	return b.String()
}

// OK reports whether discovery completed with zero load failures. A
// discovery run with zero components is still OK; see Non-goals §4.D
// on empty-registry behaviour.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}
