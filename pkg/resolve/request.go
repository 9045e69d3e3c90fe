package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gnodet/hnvm/pkg/tools"
)

// MatchRequest is the JSON document accepted on stdin by `hnvm match`
type MatchRequest struct {
	DesiredVersionRange             string       `json:"desiredVersionRange"`
	AvailableVersionsColonDelimited string       `json:"availableVersionsColonDelimited,omitempty"`
	NpmPackageInfo                  *PackageInfo `json:"npmPackageInfo,omitempty"`
}

// DecodeMatchRequest reads a single MatchRequest
func DecodeMatchRequest(r io.Reader) (*MatchRequest, error) {
	var req MatchRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, &tools.ConfigError{Msg: "invalid match request", Err: err}
	}
	return &req, nil
}

// Candidates converts the request into the candidate set it describes.
// A non-empty colon list takes precedence over registry metadata.
func (m *MatchRequest) Candidates() (Candidates, error) {
	if m.AvailableVersionsColonDelimited != "" {
		var versions []string
		for _, v := range strings.Split(m.AvailableVersionsColonDelimited, ":") {
			if v = strings.TrimSpace(v); v != "" {
				versions = append(versions, v)
			}
		}
		return ExplicitCandidates{Versions: versions}, nil
	}
	if m.NpmPackageInfo != nil {
		return RegistryCandidates{Info: m.NpmPackageInfo}, nil
	}
	return nil, &tools.ConfigError{Msg: "Must specify one of `availableVersionsColonDelimited` or `npmPackageInfo`"}
}

// Match runs the request through the matcher. tool names the requirement in errors.
func Match(tool string, r io.Reader) (Resolved, error) {
	req, err := DecodeMatchRequest(r)
	if err != nil {
		return Resolved{}, err
	}
	c, err := req.Candidates()
	if err != nil {
		return Resolved{}, err
	}
	return Resolve(Requirement{Tool: tool, Spec: req.DesiredVersionRange}, c)
}

// FormatResult renders a successful match the way the stdin protocol prints it
func FormatResult(res Resolved) string {
	return fmt.Sprintf("%s\n", res.Version)
}
