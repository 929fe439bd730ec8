package graph

import (
	"slices"

	"github.com/pders01/git-release/internal/models"
)

// Graph is an immutable, validated module graph.
//
// It is safe for concurrent read access.
type Graph struct {
	modules map[string]models.Module
	ids     []string // sorted
	// dependsOn is the reverse of Affects, kept for queries.
	dependsOn map[string][]string
}

// New builds and validates a Graph.
//
// Validation rejects:
//   - empty or duplicate module ids
//   - modules without a parsed version
//   - affects entries referencing unknown modules
//
// Affects lists are copied, de-duplicated and sorted so that traversal
// order only depends on module ids.
func New(modules []models.Module) (*Graph, error) {
	if len(modules) == 0 {
		return nil, &Error{Kind: ErrInvalidGraph, Msg: "no modules"}
	}

	g := &Graph{
		modules:   make(map[string]models.Module, len(modules)),
		ids:       make([]string, 0, len(modules)),
		dependsOn: make(map[string][]string),
	}

	for _, m := range modules {
		if m.ID == "" {
			return nil, &Error{Kind: ErrInvalidGraph, Msg: "module id is required"}
		}
		if _, exists := g.modules[m.ID]; exists {
			return nil, &Error{Kind: ErrDuplicateModule, ModuleID: m.ID}
		}
		if m.Version == nil {
			return nil, &Error{Kind: ErrMissingVersion, ModuleID: m.ID}
		}
		g.modules[m.ID] = m
		g.ids = append(g.ids, m.ID)
	}
	slices.Sort(g.ids)

	for _, id := range g.ids {
		m := g.modules[id]
		affects := make([]string, 0, len(m.Affects))
		for _, target := range m.Affects {
			if _, ok := g.modules[target]; !ok {
				return nil, UnknownModule(target, "affected by "+id)
			}
			affects = append(affects, target)
		}
		slices.Sort(affects)
		m.Affects = slices.Compact(affects)
		g.modules[id] = m

		for _, target := range m.Affects {
			g.dependsOn[target] = append(g.dependsOn[target], id)
		}
	}

	return g, nil
}

// Len returns the number of modules
func (g *Graph) Len() int {
	return len(g.ids)
}

// IDs returns all module ids in sorted order
func (g *Graph) IDs() []string {
	return slices.Clone(g.ids)
}

// Modules returns all modules ordered by id
func (g *Graph) Modules() []models.Module {
	out := make([]models.Module, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.modules[id])
	}
	return out
}

// Module looks up a module by id
func (g *Graph) Module(id string) (models.Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Has reports whether id is part of the graph
func (g *Graph) Has(id string) bool {
	_, ok := g.modules[id]
	return ok
}

// Affects returns the sorted ids directly affected by id
func (g *Graph) Affects(id string) ([]string, error) {
	m, ok := g.modules[id]
	if !ok {
		return nil, UnknownModule(id, "affects lookup")
	}
	return slices.Clone(m.Affects), nil
}

// DependsOn returns the sorted ids whose changes affect id
func (g *Graph) DependsOn(id string) ([]string, error) {
	if _, ok := g.modules[id]; !ok {
		return nil, UnknownModule(id, "dependency lookup")
	}
	return slices.Clone(g.dependsOn[id]), nil
}

// Reach returns every module transitively affected by id, excluding id
// itself unless it sits on a cycle. The result is sorted.
func (g *Graph) Reach(id string) ([]string, error) {
	if _, ok := g.modules[id]; !ok {
		return nil, UnknownModule(id, "reach")
	}

	seen := make(map[string]bool)
	queue := slices.Clone(g.modules[id].Affects)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		queue = append(queue, g.modules[next].Affects...)
	}

	out := make([]string, 0, len(seen))
	for target := range seen {
		out = append(out, target)
	}
	slices.Sort(out)
	return out, nil
}

// Children returns the paths of modules nested below the module at path.
// History lookups exclude them so a parent is never credited with a
// child's commits.
func (g *Graph) Children(id string) []string {
	parent, ok := g.modules[id]
	if !ok {
		return nil
	}
	var out []string
	for _, other := range g.ids {
		if other == id {
			continue
		}
		child := g.modules[other]
		if isNested(parent.Path, child.Path) {
			out = append(out, child.Path)
		}
	}
	return out
}

func isNested(parent, child string) bool {
	if parent == child {
		return false
	}
	if parent == "." || parent == "" {
		return child != "." && child != ""
	}
	return len(child) > len(parent) && child[:len(parent)] == parent && child[len(parent)] == '/'
}
