// Package version provides the coordinator version identifier and helpers
// for parsing and comparing "major.minor.update" version strings.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Major is the major version component.
	Major = 1
	// Minor is the minor version component.
	Minor = 7
	// Update is the update (patch) version component.
	Update = 7
)

// Current is the version implemented by this module.
const Current = "1.7.7"

// identifierPrefix precedes the version in the value read from the version
// attribute.
const identifierPrefix = "version: "

// Version represents a parsed "major.minor.update" version.
type Version struct {
	Major  uint16
	Minor  uint16
	Update uint16
}

// Parse parses a "major.minor.update" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor.update", s)
	}

	var comps [3]uint16
	names := [3]string{"major", "minor", "update"}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || p == "" {
			return Version{}, fmt.Errorf("invalid version %q: bad %s component", s, names[i])
		}
		comps[i] = uint16(n)
	}

	return Version{Major: comps[0], Minor: comps[1], Update: comps[2]}, nil
}

// ParseIdentifier parses a "version: x.y.z" identifier as returned by Identifier.
func ParseIdentifier(s string) (Version, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), identifierPrefix)
	if !ok {
		return Version{}, fmt.Errorf("invalid version identifier %q: missing %q prefix", s, identifierPrefix)
	}
	return Parse(rest)
}

// String returns the version as "major.minor.update".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Update)
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// Compare returns -1, 0 or +1 depending on whether v is older than, equal
// to, or newer than other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpUint(v.Minor, other.Minor)
	default:
		return cmpUint(v.Update, other.Update)
	}
}

func cmpUint(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Identifier returns the fixed identifier string exposed by the version
// attribute, e.g. "version: 1.7.7".
func Identifier() string {
	return identifierPrefix + Current
}
