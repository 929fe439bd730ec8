package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/git-release/internal/config"
	"github.com/pders01/git-release/internal/engine"
	"github.com/pders01/git-release/internal/git"
	"github.com/pders01/git-release/internal/history"
	"github.com/pders01/git-release/internal/models"
	"github.com/pders01/git-release/internal/staging"
)

var (
	applyFlags  releaseFlags
	applyTag    bool
	applyCommit bool
	applyPush   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write the planned versions and optionally commit, tag and push",
	Long: `Compute the release plan and write every changed version file as one
batch. If any file cannot be written, none are.

With --commit the version files are committed, with --tag every released
module is tagged (v<version> for the root module, <path>/v<version> for
nested ones) and with --push the branch and tags are pushed atomically.

Examples:
  git-release apply
  git-release apply --commit --tag
  git-release apply --prerelease beta --commit --tag --push`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	addReleaseFlags(applyCmd, &applyFlags)

	applyCmd.Flags().BoolVar(&applyTag, "tag", false, "Create a release tag per module")
	applyCmd.Flags().BoolVar(&applyCommit, "commit", false, "Commit the version files")
	applyCmd.Flags().BoolVar(&applyPush, "push", false, "Push the commit and tags")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	doCommit := applyCommit || config.ShouldCommit()
	doTag := applyTag || config.ShouldTag()
	doPush := applyPush || config.ShouldPush()

	if doCommit || doTag {
		dirty, err := git.HasUncommittedChanges()
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("working tree has uncommitted changes")
		}
	}

	plan, err := buildPlan(ctx, &applyFlags)
	if err != nil {
		return err
	}
	changed := plan.result.Changed
	if len(changed) == 0 {
		return printPlan(plan.result, &applyFlags)
	}

	tags := make([]string, 0, len(changed))
	if doTag {
		for _, d := range changed {
			m, _ := plan.graph.Module(d.ModuleID)
			name := history.TagName(m, d.ToVersion)
			if git.TagExists(name) {
				return fmt.Errorf("tag %s already exists", name)
			}
			tags = append(tags, name)
		}
	}

	manager := staging.New(plan.eco)
	if err := engine.Apply(ctx, manager, changed); err != nil {
		return fmt.Errorf("failed to write versions: %w", err)
	}
	slog.Info("wrote versions", slog.String("run_id", plan.result.RunID), slog.Int("modules", len(changed)))

	if doCommit {
		files := make([]string, 0, len(changed))
		for _, d := range changed {
			m, _ := plan.graph.Module(d.ModuleID)
			files = append(files, filepath.Join(plan.root, filepath.FromSlash(m.VersionFile)))
		}
		if err := git.AddFiles(files...); err != nil {
			return err
		}
		if err := git.Commit(releaseMessage(config.GetCommitMessage(), changed)); err != nil {
			return err
		}
	}

	if doTag {
		if !doCommit {
			slog.Warn("tagging HEAD without committing the version files")
		}
		for _, name := range tags {
			if err := git.CreateTag(name, "Release "+name); err != nil {
				return err
			}
		}
	}

	if doPush {
		if err := git.PushWithTags(config.GetRemote(), tags...); err != nil {
			return err
		}
	}

	if err := printPlan(plan.result, &applyFlags); err != nil {
		return err
	}
	if !applyFlags.json && !applyFlags.toon {
		for _, name := range tags {
			fmt.Printf("Tagged %s\n", name)
		}
	}
	return nil
}

// releaseMessage lists every released module below the configured subject
func releaseMessage(subject string, changed []*models.Decision) string {
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	for _, d := range changed {
		fmt.Fprintf(&b, "- %s: %s -> %s\n", d.ModuleID, d.From(), d.ToVersion)
	}
	return b.String()
}
