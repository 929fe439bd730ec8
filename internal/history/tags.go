package history

import (
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pders01/git-release/internal/models"
)

// TagPrefix returns the tag prefix of a module: "v" for the root module and
// "<path>/v" for nested ones, the layout Go uses for nested modules.
func TagPrefix(m models.Module) string {
	p := path.Clean(strings.TrimPrefix(m.Path, "./"))
	if m.Kind == models.KindRoot || p == "." || p == "" {
		return "v"
	}
	return p + "/v"
}

// TagName returns the release tag for a module at version
func TagName(m models.Module, version string) string {
	return TagPrefix(m) + version
}

// ParseTag returns the version encoded in tag when it belongs to m
func ParseTag(m models.Module, tag string) (*semver.Version, bool) {
	rest, ok := strings.CutPrefix(tag, TagPrefix(m))
	if !ok {
		return nil, false
	}
	v, err := semver.StrictNewVersion(rest)
	if err != nil {
		return nil, false
	}
	return v, true
}
