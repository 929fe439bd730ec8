package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	modulesJSON bool
	modulesToon bool
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List discovered modules and how they affect each other",
	Long: `List every module found by the configured ecosystem with its current
version, the modules it directly affects and everything a bump of it can
reach through cascading.

Examples:
  git-release modules
  git-release modules --json`,
	RunE: runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)

	modulesCmd.Flags().BoolVar(&modulesJSON, "json", false, "Output as JSON")
	modulesCmd.Flags().BoolVar(&modulesToon, "toon", false, "Output in LLM-friendly toon format")
}

type moduleView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Kind        string   `json:"kind"`
	Version     string   `json:"version"`
	VersionFile string   `json:"version_file"`
	Affects     []string `json:"affects"`
	DependsOn   []string `json:"depends_on"`
	Reach       []string `json:"reach"`
}

func runModules(cmd *cobra.Command, args []string) error {
	_, _, g, err := discover(commandContext(cmd))
	if err != nil {
		return err
	}

	views := make([]moduleView, 0, g.Len())
	for _, m := range g.Modules() {
		dependsOn, err := g.DependsOn(m.ID)
		if err != nil {
			return err
		}
		reach, err := g.Reach(m.ID)
		if err != nil {
			return err
		}
		views = append(views, moduleView{
			ID:          m.ID,
			Name:        m.Name,
			Path:        m.Path,
			Kind:        string(m.Kind),
			Version:     m.Version.String(),
			VersionFile: m.VersionFile,
			Affects:     m.Affects,
			DependsOn:   dependsOn,
			Reach:       reach,
		})
	}

	if done, err := printStructured(views, modulesJSON, modulesToon); done {
		return err
	}

	fmt.Printf("Modules (%d)\n", len(views))
	fmt.Println("━━━━━━━━━━━")
	for _, v := range views {
		fmt.Println()
		fmt.Printf("%s  %s\n", v.ID, v.Version)
		fmt.Printf("  Path:       %s (%s)\n", v.Path, v.Kind)
		fmt.Printf("  Affects:    %s\n", joinOrDash(v.Affects))
		fmt.Printf("  Depends on: %s\n", joinOrDash(v.DependsOn))
		fmt.Printf("  Reach:      %s\n", joinOrDash(v.Reach))
	}
	return nil
}
