package version

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version
type Version = semver.Version

// Range is a compiled Node-style version range (^, ~, x-ranges, hyphen ranges, ||)
type Range struct {
	Raw      string
	branches []branch
}

// branch is one ||-separated comparator set
type branch struct {
	constraint *semver.Constraints
	// prereleaseTuples holds the major.minor.patch of comparators carrying a prerelease tag
	prereleaseTuples map[string]bool
}

var prereleaseComparator = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*`)

// Parse parses a strict version string such as "14.18.0".
// A leading "v" is accepted since Node.js tags its releases that way.
func Parse(v string) (*Version, error) {
	ver, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %s", v)
	}
	return ver, nil
}

// IsExact reports whether spec pins a single full version
func IsExact(spec string) bool {
	_, err := Parse(spec)
	return err == nil
}

// ParseRange compiles a range expression. An empty expression means "any".
func ParseRange(spec string) (*Range, error) {
	raw := strings.TrimSpace(spec)
	expr := raw
	if expr == "" {
		expr = "*"
	}
	r := &Range{Raw: raw}
	for _, part := range strings.Split(expr, "||") {
		part = strings.TrimSpace(part)
		if part == "" {
			part = "*"
		}
		c, err := semver.NewConstraint(part)
		if err != nil {
			return nil, fmt.Errorf("invalid version range %q: %w", spec, err)
		}
		b := branch{constraint: c, prereleaseTuples: map[string]bool{}}
		for _, m := range prereleaseComparator.FindAllStringSubmatch(part, -1) {
			b.prereleaseTuples[m[1]+"."+m[2]+"."+m[3]] = true
		}
		r.branches = append(r.branches, b)
	}
	return r, nil
}

// IsValidRange reports whether spec can be compiled as a range
func IsValidRange(spec string) bool {
	_, err := ParseRange(spec)
	return err == nil
}

// Satisfies reports whether the version string is inside the range.
// Unparseable versions never satisfy. A prerelease only satisfies a comparator set
// that names a prerelease of the same major.minor.patch, as npm does.
func (r *Range) Satisfies(v string) bool {
	ver, err := Parse(v)
	if err != nil {
		return false
	}
	tuple := fmt.Sprintf("%d.%d.%d", ver.Major(), ver.Minor(), ver.Patch())
	for _, b := range r.branches {
		if !b.constraint.Check(ver) {
			continue
		}
		if ver.Prerelease() == "" || b.prereleaseTuples[tuple] {
			return true
		}
	}
	return false
}

func (r *Range) String() string {
	if r.Raw == "" {
		return "*"
	}
	return r.Raw
}

// Compare compares two version strings; unparseable versions sort lowest
func Compare(a, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// SortDescending returns a copy of versions, newest first
func SortDescending(versions []string) []string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) > 0
	})
	return sorted
}
