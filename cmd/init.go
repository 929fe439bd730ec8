package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pders01/git-release/internal/config"
	"github.com/pders01/git-release/internal/ecosystem"
	"github.com/pders01/git-release/internal/git"
	"github.com/pders01/git-release/internal/models"
)

var initEcosystem string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default release configuration in the current repository",
	Long: `Write a .release.toml with the default commit type mapping and
dependency rule so they can be tuned per repository.

This command:
  - Creates .release.toml if it doesn't exist
  - With --ecosystem manifest, also creates a release-modules.yaml skeleton

Existing files are never overwritten.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initEcosystem, "ecosystem", ecosystem.KindGo, "Module discovery: go or manifest")
}

type fileConfig struct {
	Policy        policySection        `toml:"policy"`
	Prerelease    prereleaseSection    `toml:"prerelease"`
	BuildMetadata buildMetadataSection `toml:"build_metadata"`
	Snapshot      snapshotSection      `toml:"snapshot"`
	Discovery     discoverySection     `toml:"discovery"`
	Git           gitSection           `toml:"git"`
}

type policySection struct {
	DefaultBump            string            `toml:"default_bump"`
	IncludeNonConventional bool              `toml:"include_nonconventional"`
	CommitTypes            map[string]string `toml:"commit_types"`
	Dependency             map[string]string `toml:"dependency"`
}

type prereleaseSection struct {
	Enabled        bool   `toml:"enabled"`
	Identifier     string `toml:"identifier"`
	Timestamp      bool   `toml:"timestamp"`
	ForceUnchanged bool   `toml:"force_unchanged"`
}

type buildMetadataSection struct {
	Enabled bool   `toml:"enabled"`
	Value   string `toml:"value"`
}

type snapshotSection struct {
	Enabled bool   `toml:"enabled"`
	Suffix  string `toml:"suffix"`
}

type discoverySection struct {
	Ecosystem   string `toml:"ecosystem"`
	Manifest    string `toml:"manifest,omitempty"`
	VersionFile string `toml:"version_file"`
}

type gitSection struct {
	Tag           bool   `toml:"tag"`
	Commit        bool   `toml:"commit"`
	Push          bool   `toml:"push"`
	Remote        string `toml:"remote"`
	CommitMessage string `toml:"commit_message"`
}

func defaultFileConfig(kind string) fileConfig {
	policy := models.DefaultPolicy()

	commitTypes := make(map[string]string, len(policy.CommitTypeBump))
	for typ, rule := range policy.CommitTypeBump {
		commitTypes[typ] = rule.String()
	}
	dependency := make(map[string]string, len(policy.DependencyRule))
	for from, to := range policy.DependencyRule {
		dependency[from.String()] = to.String()
	}

	cfg := fileConfig{
		Policy: policySection{
			DefaultBump: policy.DefaultBump.String(),
			CommitTypes: commitTypes,
			Dependency:  dependency,
		},
		Prerelease: prereleaseSection{Identifier: "alpha"},
		Snapshot:   snapshotSection{Suffix: models.DefaultSnapshotSuffix},
		Discovery: discoverySection{
			Ecosystem:   kind,
			VersionFile: ecosystem.DefaultVersionFile,
		},
		Git: gitSection{
			Remote:        "origin",
			CommitMessage: "chore(release): publish modules",
		},
	}
	if kind == ecosystem.KindManifest {
		cfg.Discovery.Manifest = ecosystem.DefaultManifest
	}
	return cfg
}

func runInit(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}
	if initEcosystem != ecosystem.KindGo && initEcosystem != ecosystem.KindManifest {
		return fmt.Errorf("%w: %q", ecosystem.ErrUnknownEcosystem, initEcosystem)
	}

	if fileExists(config.FileName) {
		fmt.Printf("Config already exists: %s\n", config.FileName)
	} else {
		f, err := os.Create(config.FileName)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := toml.NewEncoder(f).Encode(defaultFileConfig(initEcosystem)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write config file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Printf("✓ Created default config: %s\n", config.FileName)
	}

	if initEcosystem == ecosystem.KindManifest {
		if err := writeManifestSkeleton(); err != nil {
			return err
		}
	}

	fmt.Println("\n✓ Release configuration initialized!")
	fmt.Println("  You can now use: git-release plan")
	return nil
}

func writeManifestSkeleton() error {
	if fileExists(ecosystem.DefaultManifest) {
		fmt.Printf("Manifest already exists: %s\n", ecosystem.DefaultManifest)
		return nil
	}

	skeleton := ecosystem.ManifestFile{
		Modules: []ecosystem.ManifestModule{
			{ID: "core", Path: "core"},
			{ID: "app", Path: ".", DependsOn: []string{"core"}},
		},
	}
	data, err := yaml.Marshal(skeleton)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(ecosystem.DefaultManifest, data, 0644); err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	fmt.Printf("✓ Created manifest skeleton: %s\n", ecosystem.DefaultManifest)
	return nil
}
