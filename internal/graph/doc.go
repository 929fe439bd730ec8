// Package graph holds the per-run module graph.
//
// A Graph is an immutable snapshot of every module in the repository: its
// identity, its on-disk version at run start and the set of modules it
// affects. Edges point from a dependency to its dependents, so a bump
// travels along them. The affects relation may contain cycles; nothing in
// this package requires it to be acyclic.
package graph
