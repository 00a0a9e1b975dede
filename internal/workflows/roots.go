// Package workflows defines the on-disk layout of this server's
// shipped component definitions — the core tool/resource/prompt
// manifests under examples/components/core and the core workflow
// definitions under examples/workflows — and exposes it as the
// discovery.Root list cmd/splunk-mcp-server hands to discovery.Load.
//
// It holds no tool logic itself; internal/coretools implements the Go
// handlers the manifests here name by id.
package workflows

import (
	"path/filepath"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/discovery"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// CoreRoots returns the discovery roots for this server's built-in
// components, rooted at baseDir (typically the directory containing the
// running binary's examples/ tree, or a path supplied via flag/env for
// out-of-tree deployments).
func CoreRoots(baseDir string) []discovery.Root {
	components := filepath.Join(baseDir, "components", "core")
	return []discovery.Root{
		{Path: filepath.Join(components, "tools"), Kind: registry.KindTool, Origin: registry.OriginCore},
		{Path: filepath.Join(components, "resources"), Kind: registry.KindResource, Origin: registry.OriginCore},
		{Path: filepath.Join(components, "prompts"), Kind: registry.KindPrompt, Origin: registry.OriginCore},
		{Path: filepath.Join(baseDir, "workflows"), Kind: registry.KindWorkflow, Origin: registry.OriginCore},
	}
}

// ContribRoots returns the discovery roots for operator-supplied
// contrib components rooted at baseDir, mirroring CoreRoots' layout
// under a directory the operator controls rather than ships with the
// server.
func ContribRoots(baseDir string) []discovery.Root {
	return []discovery.Root{
		{Path: filepath.Join(baseDir, "tools"), Kind: registry.KindTool, Origin: registry.OriginContrib},
		{Path: filepath.Join(baseDir, "resources"), Kind: registry.KindResource, Origin: registry.OriginContrib},
		{Path: filepath.Join(baseDir, "prompts"), Kind: registry.KindPrompt, Origin: registry.OriginContrib},
		{Path: filepath.Join(baseDir, "workflows"), Kind: registry.KindWorkflow, Origin: registry.OriginContrib},
	}
}
