package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pders01/git-release/internal/models"
)

// ParseError reports a module whose recorded version is not valid SemVer.
type ParseError struct {
	ModuleID string
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	if e.ModuleID == "" {
		return fmt.Sprintf("invalid version %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("module %q: invalid version %q: %v", e.ModuleID, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse strictly parses the version recorded for a module
func Parse(moduleID, raw string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, &ParseError{ModuleID: moduleID, Raw: raw, Err: err}
	}
	return v, nil
}

// Compare orders two version strings by SemVer precedence.
// Build metadata is ignored.
func Compare(a, b string) (int, error) {
	va, err := Parse("", a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse("", b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// Bump applies a standard increment to the numeric core. Any pre-release or
// build suffix is dropped, so the result always has higher precedence than v.
func Bump(v *semver.Version, b models.BumpType) *semver.Version {
	switch b {
	case models.BumpMajor:
		return semver.New(v.Major()+1, 0, 0, "", "")
	case models.BumpMinor:
		return semver.New(v.Major(), v.Minor()+1, 0, "", "")
	case models.BumpPatch:
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	default:
		return semver.New(v.Major(), v.Minor(), v.Patch(), v.Prerelease(), v.Metadata())
	}
}

// PrereleaseCounter returns n when pre is exactly "<identifier>.<n>"
func PrereleaseCounter(pre, identifier string) (uint64, bool) {
	if identifier == "" {
		return 0, false
	}
	rest, ok := strings.CutPrefix(pre, identifier+".")
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	if len(rest) > 1 && rest[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsSamePrereleaseLine reports whether v continues the identifier's counter
func IsSamePrereleaseLine(v *semver.Version, identifier string) bool {
	_, ok := PrereleaseCounter(v.Prerelease(), identifier)
	return ok
}

func withoutMetadata(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), v.Prerelease(), "")
}

// stripSuffix removes a trailing snapshot suffix, keeping any metadata.
func stripSuffix(v *semver.Version, suffix string) *semver.Version {
	core := withoutMetadata(v).String()
	trimmed, ok := strings.CutSuffix(core, suffix)
	if !ok {
		return v
	}
	out, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return v
	}
	if v.Metadata() != "" {
		if withMeta, err := out.SetMetadata(v.Metadata()); err == nil {
			return &withMeta
		}
	}
	return out
}

// appendSuffix appends suffix unless the version already ends with it.
func appendSuffix(v *semver.Version, suffix string) (*semver.Version, error) {
	core := withoutMetadata(v).String()
	if strings.HasSuffix(core, suffix) {
		return v, nil
	}
	out, err := semver.StrictNewVersion(core + suffix)
	if err != nil {
		return nil, fmt.Errorf("snapshot suffix %q on %s: %w", suffix, core, err)
	}
	if v.Metadata() != "" {
		withMeta, err := out.SetMetadata(v.Metadata())
		if err != nil {
			return nil, err
		}
		return &withMeta, nil
	}
	return out, nil
}

// setMetadata replaces the build metadata of v.
func setMetadata(v *semver.Version, value string) (*semver.Version, error) {
	out, err := v.SetMetadata(value)
	if err != nil {
		return nil, fmt.Errorf("build metadata %q: %w", value, err)
	}
	return &out, nil
}
