package cmd

import (
	"github.com/spf13/cobra"
)

var planFlags releaseFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the next version of every module without writing anything",
	Long: `Compute the next version of every module from the commits since its
last release tag and show the decisions. Nothing is written.

Examples:
  git-release plan
  git-release plan --prerelease rc --timestamp
  git-release plan --snapshot --json
  git-release plan --build-metadata`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addReleaseFlags(planCmd, &planFlags)
}

func runPlan(cmd *cobra.Command, args []string) error {
	plan, err := buildPlan(commandContext(cmd), &planFlags)
	if err != nil {
		return err
	}
	return printPlan(plan.result, &planFlags)
}
