// Package discovery walks component roots on disk, validates each
// candidate component's metadata, and registers the valid ones into a
// Component Registry (pkg/registry). It implements Module D of the
// server's design: a manifest-driven loader rather than the source
// system's dynamic directory walk + dynamic import, per the static
// registration design note — each manifest names a pre-compiled Go
// handler by id, resolved through the builtin tables in builtins.go.
package discovery

import (
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// Root is one filesystem location to discover components from, tagged
// with its origin so the registry can apply core-beats-contrib
// conflict resolution.
type Root struct {
	Path   string
	Kind   registry.Kind
	Origin registry.Origin
}

// LoadFailure is emitted, without aborting discovery, whenever a
// candidate file cannot be turned into a valid component.
type LoadFailure struct {
	Path   string
	Kind   registry.Kind
	Reason string
}

// Report summarises one discovery run: counts by kind and by origin,
// plus every LoadFailure encountered.
type Report struct {
	ByKind    map[registry.Kind]int
	ByOrigin  map[registry.Origin]int
	Failures  []LoadFailure
	Warnings  []string
	FilesSeen int
}

func newReport() *Report {
	return &Report{
		ByKind:   make(map[registry.Kind]int),
		ByOrigin: make(map[registry.Origin]int),
	}
}

func (r *Report) recordLoaded(kind registry.Kind, origin registry.Origin) {
	r.ByKind[kind]++
	r.ByOrigin[origin]++
}

func (r *Report) recordFailure(f LoadFailure) {
	r.Failures = append(r.Failures, f)
}

func (r *Report) recordWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
