package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/git-release/internal/config"
	"github.com/pders01/git-release/internal/ecosystem"
	"github.com/pders01/git-release/internal/engine"
	"github.com/pders01/git-release/internal/git"
	"github.com/pders01/git-release/internal/graph"
	"github.com/pders01/git-release/internal/history"
	"github.com/pders01/git-release/internal/models"
)

// buildMetadataFromCommit makes --build-metadata use the short HEAD hash
const buildMetadataFromCommit = "commit"

// releaseFlags are shared by plan and apply
type releaseFlags struct {
	json           bool
	toon           bool
	prerelease     string
	timestamp      bool
	buildMetadata  string
	snapshot       bool
	forceUnchanged bool
}

func addReleaseFlags(cmd *cobra.Command, f *releaseFlags) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&f.toon, "toon", false, "Output in LLM-friendly toon format")
	cmd.Flags().StringVar(&f.prerelease, "prerelease", "", "Produce pre-releases with this identifier (e.g. alpha, rc)")
	cmd.Flags().BoolVar(&f.timestamp, "timestamp", false, "Append a UTC timestamp to the pre-release identifier")
	cmd.Flags().StringVar(&f.buildMetadata, "build-metadata", "", "Attach build metadata (defaults to the short commit hash)")
	cmd.Flags().Lookup("build-metadata").NoOptDefVal = buildMetadataFromCommit
	cmd.Flags().BoolVar(&f.snapshot, "snapshot", false, "Append the ecosystem snapshot suffix")
	cmd.Flags().BoolVar(&f.forceUnchanged, "force-unchanged", false, "Give unchanged modules a pre-release too")
}

func (f *releaseFlags) reset() {
	*f = releaseFlags{}
}

// modes merges command line flags over the configured mode flags
func (f *releaseFlags) modes() (models.ModeFlags, error) {
	m, err := config.LoadModes()
	if err != nil {
		return models.ModeFlags{}, err
	}

	if f.prerelease != "" {
		m.Prerelease.Enabled = true
		m.Prerelease.Identifier = f.prerelease
	}
	if f.timestamp {
		m.TimestampIdentifier = true
	}
	if f.forceUnchanged {
		m.ForceUnchangedInPrerelease = true
	}
	if f.snapshot {
		m.EcosystemSnapshot.Enabled = true
	}
	if f.buildMetadata != "" {
		m.BuildMetadata.Enabled = true
		m.BuildMetadata.Value = f.buildMetadata
	}

	if m.BuildMetadata.Enabled && (m.BuildMetadata.Value == "" || m.BuildMetadata.Value == buildMetadataFromCommit) {
		short, err := git.GetShortCommit()
		if err != nil {
			return models.ModeFlags{}, err
		}
		m.BuildMetadata.Value = short
	}

	if err := config.ValidateModes(m); err != nil {
		return models.ModeFlags{}, err
	}
	return m, nil
}

// releasePlan is a computed plan plus what is needed to apply it
type releasePlan struct {
	root   string
	eco    ecosystem.Ecosystem
	graph  *graph.Graph
	result *engine.Result
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// discover finds the modules of the current repository
func discover(ctx context.Context) (string, ecosystem.Ecosystem, *graph.Graph, error) {
	if !git.IsGitRepo() {
		return "", nil, nil, fmt.Errorf("not a git repository")
	}
	root, err := git.GetRepoRoot()
	if err != nil {
		return "", nil, nil, err
	}

	eco, err := ecosystem.New(config.GetEcosystemOptions(root))
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	modules, err := eco.Discover(ctx)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to discover modules: %w", err)
	}
	if len(modules) == 0 {
		return "", nil, nil, fmt.Errorf("no modules found (ecosystem %s)", eco.Name())
	}

	g, err := graph.New(modules)
	if err != nil {
		return "", nil, nil, err
	}
	slog.Debug("discovered modules", slog.String("ecosystem", eco.Name()), slog.Int("count", g.Len()))
	return root, eco, g, nil
}

// buildPlan runs discovery, history lookup and the decision engine.
// Nothing is written.
func buildPlan(ctx context.Context, f *releaseFlags) (*releasePlan, error) {
	policy, err := config.LoadPolicy()
	if err != nil {
		return nil, err
	}
	modes, err := f.modes()
	if err != nil {
		return nil, err
	}

	root, eco, g, err := discover(ctx)
	if err != nil {
		return nil, err
	}
	if modes.EcosystemSnapshot.Suffix == "" {
		modes.EcosystemSnapshot.Suffix = eco.SnapshotSuffix()
	}

	commits, err := history.CommitsForGraph(ctx, root, g, history.Options{
		IncludeNonConventional: config.GetIncludeNonConventional(),
		Concurrency:            config.GetConcurrency(),
		Logger:                 slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read commit history: %w", err)
	}

	result, err := engine.Plan(engine.Input{
		Graph:   g,
		Commits: commits,
		Policy:  policy,
		Mode:    modes,
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("planned release",
		slog.String("run_id", result.RunID),
		slog.Int("modules", len(result.Decisions)),
		slog.Int("changed", len(result.Changed)))

	return &releasePlan{root: root, eco: eco, graph: g, result: result}, nil
}
