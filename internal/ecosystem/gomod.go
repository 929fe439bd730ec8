package ecosystem

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/modfile"

	"github.com/pders01/git-release/internal/models"
)

// GoModules treats every go.mod below the root as a module. The module path
// is the id, versions live in a VERSION file beside go.mod, and a module
// affects every module whose go.mod requires it.
type GoModules struct {
	opts  Options
	files *VersionFiles
}

// NewGoModules creates a Go modules ecosystem
func NewGoModules(opts Options) *GoModules {
	if opts.VersionFile == "" {
		opts.VersionFile = DefaultVersionFile
	}
	return &GoModules{opts: opts}
}

// Name implements Ecosystem
func (g *GoModules) Name() string { return KindGo }

// SnapshotSuffix implements Ecosystem
func (g *GoModules) SnapshotSuffix() string { return suffixOrDefault(g.opts.Suffix) }

// Discover implements Ecosystem
func (g *GoModules) Discover(ctx context.Context) ([]models.Module, error) {
	fsys := rootFS(g.opts.Root)

	matches, err := doublestar.Glob(fsys, "**/go.mod")
	if err != nil {
		return nil, fmt.Errorf("failed to search go.mod files: %w", err)
	}
	slices.Sort(matches)

	type parsed struct {
		module   models.Module
		requires []string
	}
	var found []parsed
	byPath := make(map[string]bool)

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := path.Dir(match)
		if skipDir(dir) || excluded(dir, g.opts.Exclude) {
			continue
		}

		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", match, err)
		}
		f, err := modfile.Parse(match, data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", match, err)
		}
		if f.Module == nil {
			return nil, fmt.Errorf("%s has no module directive", match)
		}

		id := f.Module.Mod.Path
		versionFile := path.Join(dir, g.opts.VersionFile)
		v, err := readVersion(fsys, id, versionFile)
		if err != nil {
			return nil, err
		}

		var requires []string
		for _, req := range f.Require {
			requires = append(requires, req.Mod.Path)
		}

		found = append(found, parsed{
			module: models.Module{
				ID:          id,
				Name:        path.Base(id),
				Path:        dir,
				Kind:        kindOf(dir),
				Version:     v,
				VersionFile: versionFile,
			},
			requires: requires,
		})
		byPath[id] = true
	}

	affects := make(map[string][]string)
	for _, p := range found {
		for _, req := range p.requires {
			if byPath[req] && req != p.module.ID {
				affects[req] = append(affects[req], p.module.ID)
			}
		}
	}

	modules := make([]models.Module, 0, len(found))
	for _, p := range found {
		p.module.Affects = affects[p.module.ID]
		modules = append(modules, p.module)
	}

	g.files = NewVersionFiles(g.opts.Root, modules)
	return modules, nil
}

// WriteVersions implements Ecosystem
func (g *GoModules) WriteVersions(ctx context.Context, versions map[string]string) error {
	if g.files == nil {
		return fmt.Errorf("write before discovery")
	}
	return g.files.WriteVersions(ctx, versions)
}

// skipDir reports directories the go tool ignores
func skipDir(dir string) bool {
	for _, seg := range strings.Split(dir, "/") {
		if seg == "vendor" || seg == "testdata" {
			return true
		}
		if seg != "." && (strings.HasPrefix(seg, ".") || strings.HasPrefix(seg, "_")) {
			return true
		}
	}
	return false
}
