// Package engine runs the version decision pipeline for one release run:
// classification, cascade propagation, version computation and staging.
//
// Everything here is synchronous and works on fully materialized inputs.
// Commit histories and the module graph must be complete before Plan is
// called, and nothing is written until Apply.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/git-release/internal/cascade"
	"github.com/pders01/git-release/internal/classify"
	"github.com/pders01/git-release/internal/graph"
	"github.com/pders01/git-release/internal/models"
	"github.com/pders01/git-release/internal/staging"
	"github.com/pders01/git-release/internal/version"
)

// Input is everything one planning run needs
type Input struct {
	Graph   *graph.Graph
	Commits map[string][]models.CommitRecord
	Policy  models.Policy
	Mode    models.ModeFlags
	Now     time.Time
}

// Result is the outcome of a planning run
type Result struct {
	RunID string
	// Identifier is the resolved pre-release identifier, empty outside pre-release mode.
	Identifier string
	// Decisions holds one decision per module, ordered by module id.
	Decisions []*models.Decision
	// Changed holds the decisions that must be persisted.
	Changed []*models.Decision
}

// Plan computes the next version of every module in the graph
func Plan(in Input) (*Result, error) {
	if in.Graph == nil {
		return nil, fmt.Errorf("plan requires a module graph")
	}
	for id := range in.Commits {
		if !in.Graph.Has(id) {
			return nil, graph.UnknownModule(id, "commits for module")
		}
	}

	computer, err := version.NewComputer(in.Mode, in.Now)
	if err != nil {
		return nil, err
	}

	bumps := classify.All(in.Commits, in.Policy)
	decisions := make([]*models.Decision, 0, in.Graph.Len())
	for _, m := range in.Graph.Modules() {
		d := models.NewDecision(m)
		d.Bump = bumps[m.ID]
		switch {
		case d.Bump != models.BumpNone:
			d.Reason = models.ReasonCommits
			d.NeedsWrite = true
		case in.Mode.ForcesUnchanged():
			d.Reason = models.ReasonForcedUnchanged
			d.NeedsWrite = true
		}
		decisions = append(decisions, d)
	}

	if _, err := cascade.Propagate(in.Graph, decisions, in.Policy.Cascade); err != nil {
		return nil, fmt.Errorf("failed to propagate bumps: %w", err)
	}

	result := &Result{
		RunID:      uuid.NewString(),
		Identifier: computer.Identifier(),
		Decisions:  decisions,
	}
	for _, d := range decisions {
		if _, err := computer.Compute(d); err != nil {
			return nil, err
		}
		if d.NeedsWrite {
			result.Changed = append(result.Changed, d)
		}
	}

	return result, nil
}

// Apply stages every changed decision and commits them as one batch.
// On failure the manager keeps the batch so the caller may retry it.
func Apply(ctx context.Context, m *staging.Manager, changed []*models.Decision) error {
	for _, d := range changed {
		if !d.NeedsWrite {
			continue
		}
		if d.ToVersion == "" {
			return fmt.Errorf("module %q has no computed version", d.ModuleID)
		}
		m.Stage(d.ModuleID, d.ToVersion)
	}
	return m.Commit(ctx)
}
