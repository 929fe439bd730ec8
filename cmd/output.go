package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alpkeskin/gotoon"

	"github.com/pders01/git-release/internal/engine"
)

type decisionView struct {
	Module string `json:"module"`
	From   string `json:"from"`
	To     string `json:"to"`
	Bump   string `json:"bump"`
	Reason string `json:"reason"`
	Write  bool   `json:"write"`
}

type planView struct {
	RunID      string         `json:"run_id"`
	Identifier string         `json:"identifier,omitempty"`
	Changed    int            `json:"changed"`
	Modules    []decisionView `json:"modules"`
}

func newPlanView(result *engine.Result) planView {
	view := planView{
		RunID:      result.RunID,
		Identifier: result.Identifier,
		Changed:    len(result.Changed),
	}
	for _, d := range result.Decisions {
		view.Modules = append(view.Modules, decisionView{
			Module: d.ModuleID,
			From:   d.From(),
			To:     d.ToVersion,
			Bump:   d.Bump.String(),
			Reason: string(d.Reason),
			Write:  d.NeedsWrite,
		})
	}
	return view
}

// printStructured prints v as JSON or toon and reports whether it did
func printStructured(v any, asJSON, asToon bool) (bool, error) {
	if asJSON {
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return true, nil
	}

	if asToon {
		output, err := gotoon.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return true, nil
	}

	return false, nil
}

func printPlan(result *engine.Result, f *releaseFlags) error {
	view := newPlanView(result)
	if done, err := printStructured(view, f.json, f.toon); done {
		return err
	}

	fmt.Println("Release Plan")
	fmt.Println("━━━━━━━━━━━━")
	if view.Identifier != "" {
		fmt.Printf("Pre-release: %s\n", view.Identifier)
	}
	fmt.Println()

	width := len("MODULE")
	for _, m := range view.Modules {
		width = max(width, len(m.Module))
	}
	fmt.Printf("  %-*s  %-20s  %-24s  %-6s  %s\n", width, "MODULE", "CURRENT", "NEXT", "BUMP", "REASON")
	for _, m := range view.Modules {
		next := m.To
		if !m.Write {
			next = "-"
		}
		fmt.Printf("  %-*s  %-20s  %-24s  %-6s  %s\n", width, m.Module, m.From, next, m.Bump, m.Reason)
	}
	fmt.Println()

	if view.Changed == 0 {
		fmt.Println("Nothing to release")
	} else {
		fmt.Printf("%d module(s) to release\n", view.Changed)
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
