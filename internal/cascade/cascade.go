// Package cascade pushes bump pressure along the module graph.
//
// Propagation is a worklist fixed point. A module's bump only ever moves up
// the four-value order, so each module is re-enqueued at most three times
// and the worklist always drains, even when the affects relation has
// cycles. Merging is max, which is commutative and associative, so the
// final bump per module does not depend on processing order.
package cascade

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pders01/git-release/internal/graph"
	"github.com/pders01/git-release/internal/models"
)

// ErrMissingDecision is returned when a module in the graph has no decision
var ErrMissingDecision = errors.New("no decision for module")

// Rule maps an upstream bump to the bump its dependents receive.
type Rule func(models.BumpType) models.BumpType

// Propagate raises decisions along affects edges until nothing changes.
//
// It mutates the given decisions in place and returns the same slice. The
// initial worklist is ordered by module id so that side fields such as the
// reason are deterministic as well.
func Propagate(g *graph.Graph, decisions []*models.Decision, rule Rule) ([]*models.Decision, error) {
	order := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if d.Bump != models.BumpNone {
			order = append(order, d.ModuleID)
		}
	}
	slices.Sort(order)
	return propagate(g, decisions, rule, order)
}

func propagate(g *graph.Graph, decisions []*models.Decision, rule Rule, order []string) ([]*models.Decision, error) {
	index := make(map[string]*models.Decision, len(decisions))
	for _, d := range decisions {
		if !g.Has(d.ModuleID) {
			return nil, graph.UnknownModule(d.ModuleID, "decision without module")
		}
		if _, dup := index[d.ModuleID]; dup {
			return nil, &graph.Error{Kind: graph.ErrDuplicateModule, ModuleID: d.ModuleID, Msg: "two decisions"}
		}
		index[d.ModuleID] = d
	}

	queue := make([]*models.Decision, 0, len(order))
	for _, id := range order {
		d, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingDecision, id)
		}
		queue = append(queue, d)
	}

	// processed records the bump each module had when its edges were last pushed.
	processed := make(map[string]models.BumpType, len(decisions))

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		if last, ok := processed[d.ModuleID]; ok && last >= d.Bump {
			continue
		}
		processed[d.ModuleID] = d.Bump

		candidate := rule(d.Bump)
		if candidate == models.BumpNone {
			continue
		}

		affects, err := g.Affects(d.ModuleID)
		if err != nil {
			return nil, err
		}
		for _, target := range affects {
			existing, ok := index[target]
			if !ok {
				return nil, fmt.Errorf("%w %q (affected by %q)", ErrMissingDecision, target, d.ModuleID)
			}
			merged := models.MaxBump(existing.Bump, candidate)
			if merged > existing.Bump || !existing.NeedsWrite {
				existing.Bump = merged
				existing.Reason = models.ReasonCascade
				existing.NeedsWrite = true
				queue = append(queue, existing)
			}
		}
	}

	return decisions, nil
}
