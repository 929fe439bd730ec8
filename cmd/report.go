package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pders01/git-release/internal/config"
	"github.com/pders01/git-release/internal/history"
	"github.com/pders01/git-release/internal/models"
)

var reportCmd = &cobra.Command{
	Use:   "report <template>",
	Short: "Generate pre-defined release reports",
	Long: `Generate formatted reports about unreleased work.

Available templates:
  changelog - Markdown changelog of every module's unreleased commits

Examples:
  git-release report changelog`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	template := args[0]

	switch template {
	case "changelog":
		return generateChangelog(cmd)
	default:
		return fmt.Errorf("unknown report template: %s (available: changelog)", template)
	}
}

// changelogSections orders commit types in the changelog
var changelogSections = []struct {
	title string
	match func(models.CommitRecord) bool
}{
	{"Breaking Changes", func(c models.CommitRecord) bool { return c.Breaking }},
	{"Features", func(c models.CommitRecord) bool { return c.Type == "feat" }},
	{"Bug Fixes", func(c models.CommitRecord) bool { return c.Type == "fix" }},
	{"Other Changes", func(c models.CommitRecord) bool { return true }},
}

func generateChangelog(cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	root, _, g, err := discover(ctx)
	if err != nil {
		return err
	}

	commits, err := history.CommitsForGraph(ctx, root, g, history.Options{
		IncludeNonConventional: config.GetIncludeNonConventional(),
		Concurrency:            config.GetConcurrency(),
	})
	if err != nil {
		return fmt.Errorf("failed to read commit history: %w", err)
	}

	fmt.Println("# Unreleased Changes")
	for _, id := range g.IDs() {
		records := commits[id]
		if len(records) == 0 {
			continue
		}

		fmt.Printf("\n## %s\n", id)
		printed := make([]bool, len(records))
		for _, section := range changelogSections {
			var lines []string
			for i, c := range records {
				if printed[i] || !section.match(c) {
					continue
				}
				printed[i] = true
				lines = append(lines, changelogLine(c))
			}
			if len(lines) == 0 {
				continue
			}
			slices.Sort(lines)
			fmt.Printf("\n### %s\n\n", section.title)
			for _, line := range lines {
				fmt.Println(line)
			}
		}
	}
	return nil
}

func changelogLine(c models.CommitRecord) string {
	hash := c.Hash
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if c.Scope != "" {
		return fmt.Sprintf("- **%s:** %s (%s)", c.Scope, c.Subject, hash)
	}
	return fmt.Sprintf("- %s (%s)", c.Subject, hash)
}
