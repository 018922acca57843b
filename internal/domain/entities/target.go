package entities

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidTarget  = errors.New("invalid semver version or increment")
	ErrInvalidVersion = errors.New("invalid semver version")
)

// Increment keywords accepted on the command line.
const (
	IncrementMajor      = "major"
	IncrementMinor      = "minor"
	IncrementPatch      = "patch"
	IncrementPremajor   = "premajor"
	IncrementPreminor   = "preminor"
	IncrementPrepatch   = "prepatch"
	IncrementPrerelease = "prerelease"
)

//nolint:gochecknoglobals // lookup table
var increments = map[string]struct{}{
	IncrementMajor:      {},
	IncrementMinor:      {},
	IncrementPatch:      {},
	IncrementPremajor:   {},
	IncrementPreminor:   {},
	IncrementPrepatch:   {},
	IncrementPrerelease: {},
}

// Target is what the user asked the release to produce.
// It is either an ExplicitVersion or an IncrementKeyword.
type Target interface {
	// Resolve computes the new version from the current one.
	Resolve(current, preid string) (string, error)
	String() string
}

// ExplicitVersion is a literal version that wins over the current one.
type ExplicitVersion struct {
	version *semver.Version
}

// Resolve ignores the current version.
func (it ExplicitVersion) Resolve(_, _ string) (string, error) {
	return it.version.String(), nil
}

func (it ExplicitVersion) String() string {
	return it.version.String()
}

// IncrementKeyword is a named bump applied to the current version.
type IncrementKeyword struct {
	keyword string
}

// Resolve applies the increment to the current version.
func (it IncrementKeyword) Resolve(current, preid string) (string, error) {
	version, err := ParseVersion(current)
	if err != nil {
		return "", err
	}
	return Increment(version, it.keyword, preid).String(), nil
}

func (it IncrementKeyword) String() string {
	return it.keyword
}

// ParseTarget decides once whether the argument is a literal version or an increment keyword.
func ParseTarget(argument string) (Target, error) {
	argument = strings.TrimSpace(argument)
	if argument == "" {
		return nil, errors.Wrap(ErrInvalidTarget, "missing version or increment")
	}

	if version, err := ParseVersion(argument); err == nil {
		return ExplicitVersion{version: version}, nil
	}

	// keywords are case-sensitive, as in npm
	if _, ok := increments[argument]; ok {
		return IncrementKeyword{keyword: argument}, nil
	}

	return nil, errors.Wrapf(ErrInvalidTarget, "%q", argument)
}

// Bump resolves the argument against the current version.
func Bump(current, argument, preid string) (string, error) {
	target, err := ParseTarget(argument)
	if err != nil {
		return "", err
	}
	return target.Resolve(current, preid)
}

// ParseVersion parses a strict MAJOR.MINOR.PATCH version, tolerating a leading "v".
func ParseVersion(raw string) (*semver.Version, error) {
	version, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidVersion, "%q", raw)
	}
	return version, nil
}

// Increment applies a keyword to a version following the npm semver rules.
// The keyword must be one accepted by ParseTarget.
func Increment(version *semver.Version, keyword, preid string) *semver.Version {
	major, minor, patch := version.Major(), version.Minor(), version.Patch()
	pre := splitPrerelease(version.Prerelease())

	switch keyword {
	case IncrementMajor:
		if minor != 0 || patch != 0 || len(pre) == 0 {
			major++
		}
		minor, patch, pre = 0, 0, nil
	case IncrementMinor:
		if patch != 0 || len(pre) == 0 {
			minor++
		}
		patch, pre = 0, nil
	case IncrementPatch:
		if len(pre) == 0 {
			patch++
		}
		pre = nil
	case IncrementPremajor:
		major, minor, patch = major+1, 0, 0
		pre = nextPrerelease(nil, preid)
	case IncrementPreminor:
		minor, patch = minor+1, 0
		pre = nextPrerelease(nil, preid)
	case IncrementPrepatch:
		patch++
		pre = nextPrerelease(nil, preid)
	case IncrementPrerelease:
		if len(pre) == 0 {
			patch++
		}
		pre = nextPrerelease(pre, preid)
	}

	return semver.New(major, minor, patch, strings.Join(pre, "."), "")
}

func splitPrerelease(prerelease string) []string {
	if prerelease == "" {
		return nil
	}
	return strings.Split(prerelease, ".")
}

// nextPrerelease bumps the last numeric identifier, or appends "0" when there is none.
func nextPrerelease(pre []string, preid string) []string {
	next := append([]string(nil), pre...)
	if len(next) == 0 {
		next = []string{"0"}
	} else {
		bumped := false
		for i := len(next) - 1; i >= 0; i-- {
			if number, err := strconv.ParseUint(next[i], 10, 64); err == nil {
				next[i] = strconv.FormatUint(number+1, 10)
				bumped = true
				break
			}
		}
		if !bumped {
			next = append(next, "0")
		}
	}

	if preid == "" {
		return next
	}
	if next[0] == preid {
		if len(next) < 2 || !isNumeric(next[1]) {
			return []string{preid, "0"}
		}
		return next
	}
	return []string{preid, "0"}
}

func isNumeric(identifier string) bool {
	_, err := strconv.ParseUint(identifier, 10, 64)
	return err == nil
}
