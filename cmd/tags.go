package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/git-release/internal/git"
	"github.com/pders01/git-release/internal/history"
	"github.com/pders01/git-release/internal/version"
)

var (
	tagsJSON bool
	tagsToon bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show the latest release tag of every module",
	Long: `Show each module's latest release tag and the version it marks,
next to the version currently recorded in its version file.

Examples:
  git-release tags
  git-release tags --json`,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)

	tagsCmd.Flags().BoolVar(&tagsJSON, "json", false, "Output as JSON")
	tagsCmd.Flags().BoolVar(&tagsToon, "toon", false, "Output in LLM-friendly toon format")
}

type tagView struct {
	Module  string `json:"module"`
	Tag     string `json:"tag,omitempty"`
	Tagged  string `json:"tagged,omitempty"`
	Current string `json:"current"`
	Commit  string `json:"commit,omitempty"`
}

func runTags(cmd *cobra.Command, args []string) error {
	root, _, g, err := discover(commandContext(cmd))
	if err != nil {
		return err
	}

	repo, err := history.Open(root)
	if err != nil {
		return err
	}

	views := make([]tagView, 0, g.Len())
	for _, m := range g.Modules() {
		tag, err := repo.LatestTag(m)
		if err != nil {
			return fmt.Errorf("failed to read tags of %s: %w", m.ID, err)
		}
		view := tagView{Module: m.ID, Current: m.Version.String()}
		if tag != nil {
			view.Tag = tag.Name
			view.Tagged = tag.Version.String()
			view.Commit = tag.Commit.String()[:7]
		}
		views = append(views, view)
	}

	if done, err := printStructured(views, tagsJSON, tagsToon); done {
		return err
	}

	branch, err := git.GetCurrentBranch()
	if err != nil {
		return err
	}
	fmt.Printf("Release tags on %s\n", branch)
	fmt.Println("━━━━━━━━━━━━━━━━━")
	for _, v := range views {
		if v.Tag == "" {
			fmt.Printf("  %-40s  (never released, at %s)\n", v.Module, v.Current)
			continue
		}
		marker, err := driftMarker(v.Tagged, v.Current)
		if err != nil {
			return err
		}
		fmt.Printf("  %-40s  %s @ %s%s\n", v.Module, v.Tag, v.Commit, marker)
	}
	return nil
}

// driftMarker describes how the version file relates to the latest tag
func driftMarker(tagged, current string) (string, error) {
	cmp, err := version.Compare(current, tagged)
	if err != nil {
		return "", err
	}
	switch {
	case cmp > 0:
		return fmt.Sprintf("  (version file ahead: %s)", current), nil
	case cmp < 0:
		return fmt.Sprintf("  (version file behind: %s)", current), nil
	default:
		return "", nil
	}
}
