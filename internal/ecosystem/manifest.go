package ecosystem

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/pders01/git-release/internal/models"
)

// ManifestFile is the on-disk layout of release-modules.yaml
type ManifestFile struct {
	Modules []ManifestModule `yaml:"modules"`
}

// ManifestModule declares one module. DependsOn names the modules whose
// changes affect this one.
type ManifestModule struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name,omitempty"`
	Path        string   `yaml:"path"`
	VersionFile string   `yaml:"version_file,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

// Manifest reads modules from a YAML manifest for repositories that are not
// laid out as Go modules.
type Manifest struct {
	opts  Options
	files *VersionFiles
}

// NewManifest creates a manifest ecosystem
func NewManifest(opts Options) *Manifest {
	if opts.Manifest == "" {
		opts.Manifest = DefaultManifest
	}
	if opts.VersionFile == "" {
		opts.VersionFile = DefaultVersionFile
	}
	return &Manifest{opts: opts}
}

// Name implements Ecosystem
func (m *Manifest) Name() string { return KindManifest }

// SnapshotSuffix implements Ecosystem
func (m *Manifest) SnapshotSuffix() string { return suffixOrDefault(m.opts.Suffix) }

// Load reads and decodes the manifest file
func (m *Manifest) Load() (*ManifestFile, error) {
	data, err := fs.ReadFile(rootFS(m.opts.Root), m.opts.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var mf ManifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", m.opts.Manifest, err)
	}
	return &mf, nil
}

// Discover implements Ecosystem
func (m *Manifest) Discover(ctx context.Context) ([]models.Module, error) {
	mf, err := m.Load()
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(mf.Modules))
	for _, entry := range mf.Modules {
		if entry.ID == "" {
			return nil, fmt.Errorf("manifest %s: module without id", m.opts.Manifest)
		}
		declared[entry.ID] = true
	}

	kept := make([]ManifestModule, 0, len(mf.Modules))
	keptIDs := make(map[string]bool, len(mf.Modules))
	for _, entry := range mf.Modules {
		for _, dep := range entry.DependsOn {
			if !declared[dep] {
				return nil, fmt.Errorf("manifest %s: %w: %q depends on %q", m.opts.Manifest, ErrUnknownDependency, entry.ID, dep)
			}
		}
		if excluded(cleanDir(entry.Path), m.opts.Exclude) {
			continue
		}
		kept = append(kept, entry)
		keptIDs[entry.ID] = true
	}

	// Edges touching an excluded module are dropped with it.
	affects := make(map[string][]string)
	for _, entry := range kept {
		for _, dep := range entry.DependsOn {
			if keptIDs[dep] {
				affects[dep] = append(affects[dep], entry.ID)
			}
		}
	}

	fsys := rootFS(m.opts.Root)
	modules := make([]models.Module, 0, len(kept))
	for _, entry := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := cleanDir(entry.Path)

		versionFile := entry.VersionFile
		if versionFile == "" {
			versionFile = path.Join(dir, m.opts.VersionFile)
		}
		v, err := readVersion(fsys, entry.ID, versionFile)
		if err != nil {
			return nil, err
		}

		name := entry.Name
		if name == "" {
			name = entry.ID
		}
		modules = append(modules, models.Module{
			ID:          entry.ID,
			Name:        name,
			Path:        dir,
			Kind:        kindOf(dir),
			Version:     v,
			VersionFile: versionFile,
			Affects:     affects[entry.ID],
		})
	}

	m.files = NewVersionFiles(m.opts.Root, modules)
	return modules, nil
}

// WriteVersions implements Ecosystem
func (m *Manifest) WriteVersions(ctx context.Context, versions map[string]string) error {
	if m.files == nil {
		return fmt.Errorf("write before discovery")
	}
	return m.files.WriteVersions(ctx, versions)
}
