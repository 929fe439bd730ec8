package cascade

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/git-release/internal/graph"
	"github.com/pders01/git-release/internal/models"
)

var defaultRule = Rule(models.DefaultPolicy().Cascade)

func newGraph(t *testing.T, edges map[string][]string) *graph.Graph {
	t.Helper()
	var modules []models.Module
	for id, affects := range edges {
		modules = append(modules, models.Module{
			ID:      id,
			Path:    id,
			Version: semver.MustParse("1.0.0"),
			Affects: affects,
		})
	}
	g, err := graph.New(modules)
	require.NoError(t, err)
	return g
}

func decisionsFor(g *graph.Graph, initial map[string]models.BumpType) []*models.Decision {
	var out []*models.Decision
	for _, m := range g.Modules() {
		d := models.NewDecision(m)
		if b, ok := initial[m.ID]; ok && b != models.BumpNone {
			d.Bump = b
			d.Reason = models.ReasonCommits
			d.NeedsWrite = true
		}
		out = append(out, d)
	}
	return out
}

func byID(ds []*models.Decision) map[string]*models.Decision {
	out := make(map[string]*models.Decision, len(ds))
	for _, d := range ds {
		out[d.ModuleID] = d
	}
	return out
}

func TestMajorUpstreamCascadesMinor(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": {"app"}, "app": nil})
	ds := decisionsFor(g, map[string]models.BumpType{"lib": models.BumpMajor})

	out, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, models.BumpMinor, got["app"].Bump)
	assert.Equal(t, models.ReasonCascade, got["app"].Reason)
	assert.True(t, got["app"].NeedsWrite)
	assert.Equal(t, models.BumpMajor, got["lib"].Bump)
	assert.Equal(t, models.ReasonCommits, got["lib"].Reason)
}

func TestPatchUpstreamDoesNotCascade(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": {"app"}, "app": nil})
	ds := decisionsFor(g, map[string]models.BumpType{"lib": models.BumpPatch})

	out, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, models.BumpNone, got["app"].Bump)
	assert.Equal(t, models.ReasonUnchanged, got["app"].Reason)
	assert.False(t, got["app"].NeedsWrite)
}

func TestChainAttenuates(t *testing.T) {
	g := newGraph(t, map[string][]string{
		"core": {"lib"},
		"lib":  {"app"},
		"app":  {"cli"},
		"cli":  nil,
	})
	ds := decisionsFor(g, map[string]models.BumpType{"core": models.BumpMajor})

	_, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)

	got := byID(ds)
	assert.Equal(t, models.BumpMinor, got["lib"].Bump)
	assert.Equal(t, models.BumpPatch, got["app"].Bump)
	assert.Equal(t, models.BumpNone, got["cli"].Bump)
}

func TestHigherCascadeWins(t *testing.T) {
	g := newGraph(t, map[string][]string{
		"a":   {"app"},
		"b":   {"app"},
		"app": nil,
	})
	ds := decisionsFor(g, map[string]models.BumpType{"a": models.BumpMinor, "b": models.BumpMajor})

	_, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)
	assert.Equal(t, models.BumpMinor, byID(ds)["app"].Bump)
}

func TestCommitsAboveCascadeKeepReason(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": {"app"}, "app": nil})
	ds := decisionsFor(g, map[string]models.BumpType{"lib": models.BumpMajor, "app": models.BumpMajor})

	_, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)

	app := byID(ds)["app"]
	assert.Equal(t, models.BumpMajor, app.Bump)
	assert.Equal(t, models.ReasonCommits, app.Reason)
}

func TestCascadeRaisesForcedDecision(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": {"app"}, "app": nil})
	ds := decisionsFor(g, map[string]models.BumpType{"lib": models.BumpMajor})
	app := byID(ds)["app"]
	app.Reason = models.ReasonForcedUnchanged
	app.NeedsWrite = true

	_, err := Propagate(g, ds, defaultRule)
	require.NoError(t, err)
	assert.Equal(t, models.BumpMinor, app.Bump)
	assert.Equal(t, models.ReasonCascade, app.Reason)
}

func TestCycleTerminates(t *testing.T) {
	g := newGraph(t, map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})
	identity := Rule(func(b models.BumpType) models.BumpType { return b })
	ds := decisionsFor(g, map[string]models.BumpType{"a": models.BumpMinor, "c": models.BumpMajor})

	_, err := Propagate(g, ds, identity)
	require.NoError(t, err)
	for _, d := range ds {
		assert.Equal(t, models.BumpMajor, d.Bump, d.ModuleID)
	}
}

func TestUnknownDecisionIsFatal(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": nil})
	ds := []*models.Decision{{ModuleID: "ghost", Bump: models.BumpPatch}}

	_, err := Propagate(g, ds, defaultRule)
	assert.ErrorIs(t, err, graph.ErrUnknownModule)
}

func TestMissingDecisionIsFatal(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": {"app"}, "app": nil})
	ds := []*models.Decision{{ModuleID: "lib", Bump: models.BumpMajor, NeedsWrite: true}}

	_, err := Propagate(g, ds, defaultRule)
	assert.ErrorIs(t, err, ErrMissingDecision)
}

func TestDuplicateDecisionIsFatal(t *testing.T) {
	g := newGraph(t, map[string][]string{"lib": nil})
	ds := []*models.Decision{{ModuleID: "lib"}, {ModuleID: "lib"}}

	_, err := Propagate(g, ds, defaultRule)
	assert.ErrorIs(t, err, graph.ErrDuplicateModule)
}

// randomCase builds a random graph, cycles allowed, and a random initial bump set.
func randomCase(t *testing.T, r *rand.Rand, n int) (*graph.Graph, map[string]models.BumpType) {
	t.Helper()
	edges := make(map[string][]string, n)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%02d", i)
	}
	for _, id := range ids {
		var affects []string
		for _, other := range ids {
			if r.IntN(4) == 0 {
				affects = append(affects, other)
			}
		}
		edges[id] = affects
	}
	initial := make(map[string]models.BumpType)
	for _, id := range ids {
		initial[id] = models.AllBumpTypes[r.IntN(len(models.AllBumpTypes))]
	}
	return newGraph(t, edges), initial
}

func finalBumps(ds []*models.Decision) map[string]models.BumpType {
	out := make(map[string]models.BumpType, len(ds))
	for _, d := range ds {
		out[d.ModuleID] = d.Bump
	}
	return out
}

func TestOrderIndependence(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	rules := []Rule{
		defaultRule,
		func(b models.BumpType) models.BumpType { return b },
		func(b models.BumpType) models.BumpType {
			if b == models.BumpNone {
				return models.BumpNone
			}
			return models.BumpPatch
		},
	}

	for i := 0; i < 50; i++ {
		g, initial := randomCase(t, r, 3+r.IntN(10))
		for _, rule := range rules {
			reference := decisionsFor(g, initial)
			_, err := Propagate(g, reference, rule)
			require.NoError(t, err)
			want := finalBumps(reference)

			for j := 0; j < 5; j++ {
				ds := decisionsFor(g, initial)
				var order []string
				for _, d := range ds {
					if d.Bump != models.BumpNone {
						order = append(order, d.ModuleID)
					}
				}
				r.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
				r.Shuffle(len(ds), func(a, b int) { ds[a], ds[b] = ds[b], ds[a] })

				_, err := propagate(g, ds, rule, order)
				require.NoError(t, err)
				assert.Equal(t, want, finalBumps(ds))
			}
		}
	}
}

// pathMaximum computes, by exhaustive state search, the largest bump any
// module can receive along any path from a changed module.
func pathMaximum(g *graph.Graph, initial map[string]models.BumpType, rule Rule) map[string]models.BumpType {
	type state struct {
		id   string
		bump models.BumpType
	}
	best := make(map[string]models.BumpType)
	seen := make(map[state]bool)
	var stack []state
	for _, id := range g.IDs() {
		best[id] = initial[id]
		if initial[id] != models.BumpNone {
			stack = append(stack, state{id, initial[id]})
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		next := rule(s.bump)
		if next == models.BumpNone {
			continue
		}
		affects, _ := g.Affects(s.id)
		for _, target := range affects {
			best[target] = models.MaxBump(best[target], next)
			stack = append(stack, state{target, next})
		}
	}
	return best
}

func TestResultIsPathMaximum(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 100; i++ {
		g, initial := randomCase(t, r, 2+r.IntN(12))
		ds := decisionsFor(g, initial)
		_, err := Propagate(g, ds, defaultRule)
		require.NoError(t, err)
		assert.Equal(t, pathMaximum(g, initial, defaultRule), finalBumps(ds))
	}
}

func TestEachModuleProcessedBoundedTimes(t *testing.T) {
	// A complete graph with the identity rule is the worst case for re-checks.
	ids := []string{"a", "b", "c", "d", "e"}
	edges := make(map[string][]string)
	for _, id := range ids {
		edges[id] = slices.Clone(ids)
	}
	g := newGraph(t, edges)
	calls := 0
	identity := Rule(func(b models.BumpType) models.BumpType {
		calls++
		return b
	})
	ds := decisionsFor(g, map[string]models.BumpType{"a": models.BumpPatch, "c": models.BumpMinor, "e": models.BumpMajor})

	_, err := Propagate(g, ds, identity)
	require.NoError(t, err)
	assert.LessOrEqual(t, calls, len(ids)*3)
}
