// Package resolve turns a requirement (semver range or dist-tag) into one concrete version.
package resolve

import (
	"encoding/json"
	"strings"

	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/gnodet/hnvm/pkg/version"
)

// Requirement is what a project asks for
type Requirement struct {
	Tool string
	Spec string
}

// Resolved is the outcome of matching a Requirement against candidates
type Resolved struct {
	Tool    string
	Version string
	Variant string
}

// Candidates is the set of versions a requirement is matched against.
// It is either ExplicitCandidates or RegistryCandidates.
type Candidates interface {
	candidates()
}

// ExplicitCandidates is an ordered list of versions; the first satisfying entry wins
type ExplicitCandidates struct {
	Versions []string
}

// RegistryCandidates is the full metadata of a package published to the npm registry
type RegistryCandidates struct {
	Info *PackageInfo
}

func (ExplicitCandidates) candidates() {}
func (RegistryCandidates) candidates() {}

// PackageInfo is the registry document of a package. Version payloads are kept opaque.
type PackageInfo struct {
	Name     string                     `json:"name"`
	Versions map[string]json.RawMessage `json:"versions"`
	DistTags map[string]string          `json:"dist-tags"`
}

// VersionList returns every published version, in no particular order
func (p *PackageInfo) VersionList() []string {
	versions := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		versions = append(versions, v)
	}
	return versions
}

// Resolve picks the version for req out of c
func Resolve(req Requirement, c Candidates) (Resolved, error) {
	switch c := c.(type) {
	case ExplicitCandidates:
		return resolveExplicit(req, c.Versions)
	case RegistryCandidates:
		return resolveRegistry(req, c.Info)
	}
	return Resolved{}, &tools.ConfigError{Msg: "no candidates to resolve " + req.Tool + " against"}
}

func resolveExplicit(req Requirement, versions []string) (Resolved, error) {
	r, err := version.ParseRange(req.Spec)
	if err != nil {
		return Resolved{}, &tools.ResolutionError{Kind: tools.ErrNoMatchingVersion, Tool: req.Tool, Spec: req.Spec}
	}
	if strings.TrimSpace(req.Spec) == "" {
		// "any" means the newest candidate, whatever the list order
		versions = version.SortDescending(versions)
	}
	for _, v := range versions {
		if v == "" {
			continue
		}
		if r.Satisfies(v) {
			return Resolved{Tool: req.Tool, Version: v}, nil
		}
	}
	return Resolved{}, &tools.ResolutionError{Kind: tools.ErrNoMatchingVersion, Tool: req.Tool, Spec: req.Spec}
}

func resolveRegistry(req Requirement, info *PackageInfo) (Resolved, error) {
	if info == nil {
		return Resolved{}, &tools.ConfigError{Msg: "missing package metadata for " + req.Tool}
	}
	pkg := info.Name
	if pkg == "" {
		pkg = req.Tool
	}

	r, err := version.ParseRange(req.Spec)
	if err != nil {
		if tagged, ok := info.DistTags[req.Spec]; ok && tagged != "" {
			return Resolved{Tool: req.Tool, Version: tagged}, nil
		}
		return Resolved{}, &tools.ResolutionError{
			Kind:    tools.ErrUnknownTagOrInvalidRange,
			Tool:    req.Tool,
			Package: pkg,
			Spec:    req.Spec,
		}
	}

	for _, v := range version.SortDescending(info.VersionList()) {
		if r.Satisfies(v) {
			return Resolved{Tool: req.Tool, Version: v}, nil
		}
	}
	return Resolved{}, &tools.ResolutionError{Kind: tools.ErrNoMatchingVersion, Tool: req.Tool, Package: pkg, Spec: req.Spec}
}
