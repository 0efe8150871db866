package resolver

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type versionKind int

const (
	versionNone versionKind = iota
	versionMajorMinor
	versionString
)

// Version selects which build of a module library to load. The zero value
// is unversioned.
type Version struct {
	kind         versionKind
	major, minor int
	s            string
}

// Unversioned selects the bare artifact, <prefix><name>.so.
func Unversioned() Version { return Version{} }

// MajorMinor selects <prefix><name>.so.<major>.<minor>.
func MajorMinor(major, minor int) Version {
	return Version{kind: versionMajorMinor, major: major, minor: minor}
}

// VersionString selects <prefix><name>.so.<s>. An empty s is unversioned.
func VersionString(s string) Version {
	if s == "" {
		return Version{}
	}
	return Version{kind: versionString, s: s}
}

// ParseVersion reads a user supplied version. Exactly two numeric
// components become MajorMinor; anything else non-empty is kept verbatim.
func ParseVersion(s string) Version {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}
	}
	if s[0] >= '0' && s[0] <= '9' && strings.Count(s, ".") == 1 {
		if sv, err := semver.NewVersion(s); err == nil && sv.Prerelease() == "" && sv.Metadata() == "" {
			mm := MajorMinor(int(sv.Major()), int(sv.Minor()))
			if mm.String() == s {
				return mm
			}
		}
	}
	return VersionString(s)
}

// IsZero reports whether v is unversioned.
func (v Version) IsZero() bool { return v.kind == versionNone }

// Suffix returns what is appended to the unversioned artifact path.
func (v Version) Suffix() string {
	if v.kind == versionNone {
		return ""
	}
	return "." + v.String()
}

// String returns the version as written in an artifact name, or "" when
// unversioned.
func (v Version) String() string {
	switch v.kind {
	case versionMajorMinor:
		return fmt.Sprintf("%d.%d", v.major, v.minor)
	case versionString:
		return v.s
	default:
		return ""
	}
}

// label is String with a readable stand-in for the unversioned case.
func (v Version) label() string {
	if v.kind == versionNone {
		return "(unversioned)"
	}
	return v.String()
}
