// Package ecosystem discovers the modules of a repository and writes their
// versions back to disk.
package ecosystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/pders01/git-release/internal/models"
	"github.com/pders01/git-release/internal/version"
)

// Supported ecosystem names
const (
	KindGo       = "go"
	KindManifest = "manifest"
)

const (
	DefaultVersionFile = "VERSION"
	DefaultManifest    = "release-modules.yaml"
)

// ErrUnknownEcosystem is returned by New for unsupported kinds
var ErrUnknownEcosystem = errors.New("unknown ecosystem")

// ErrUnknownDependency is returned when a manifest entry depends on an
// undeclared module
var ErrUnknownDependency = errors.New("unknown dependency")

// Ecosystem finds modules and persists their versions.
type Ecosystem interface {
	Name() string
	Discover(ctx context.Context) ([]models.Module, error)
	// WriteVersions writes a batch of versions keyed by module id. It must
	// run after Discover.
	WriteVersions(ctx context.Context, versions map[string]string) error
	// SnapshotSuffix is the suffix appended in ecosystem snapshot mode.
	SnapshotSuffix() string
}

// Options configures an ecosystem
type Options struct {
	Kind string
	// Root is the repository root directory.
	Root        string
	Manifest    string
	VersionFile string
	Suffix      string
	// Exclude holds doublestar patterns of module directories to skip.
	Exclude []string
}

// New returns the ecosystem named by opts.Kind
func New(opts Options) (Ecosystem, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	switch opts.Kind {
	case "", KindGo:
		return NewGoModules(opts), nil
	case KindManifest:
		return NewManifest(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEcosystem, opts.Kind)
	}
}

func suffixOrDefault(s string) string {
	if s == "" {
		return models.DefaultSnapshotSuffix
	}
	return s
}

func excluded(dir string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, dir); ok {
			return true
		}
	}
	return false
}

// readVersion reads and strictly parses a version file. A missing file
// yields 0.0.0 so new modules can be released without seeding one.
func readVersion(fsys fs.FS, moduleID, file string) (*semver.Version, error) {
	data, err := fs.ReadFile(fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version file %s: %w", file, err)
	}
	return version.Parse(moduleID, string(data))
}

func kindOf(dir string) models.Kind {
	if dir == "." || dir == "" {
		return models.KindRoot
	}
	return models.KindSubmodule
}

func cleanDir(p string) string {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	if p == "" {
		return "."
	}
	return p
}

func rootFS(root string) fs.FS {
	return os.DirFS(root)
}
