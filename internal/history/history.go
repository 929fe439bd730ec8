// Package history reads per-module commit histories with go-git.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sourcegraph/conc/pool"

	"github.com/pders01/git-release/internal/conventional"
	"github.com/pders01/git-release/internal/graph"
	"github.com/pders01/git-release/internal/models"
)

// DefaultConcurrency bounds parallel history lookups
const DefaultConcurrency = 8

// Tag is a module release tag resolved to its commit
type Tag struct {
	Name    string
	Version *semver.Version
	Commit  plumbing.Hash
}

// Repository wraps a go-git repository.
//
// A Repository must not be shared between goroutines; CommitsForGraph
// opens one per worker.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository containing repoPath
func Open(repoPath string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Repository{repo: repo, path: repoPath}, nil
}

// Head returns the commit HEAD points to
func (r *Repository) Head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash(), nil
}

// LatestTag returns the highest release tag of m, or nil when m was never released
func (r *Repository) LatestTag(m models.Module) (*Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var latest *Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v, ok := ParseTag(m, name)
		if !ok {
			return nil
		}
		if latest != nil && !v.GreaterThan(latest.Version) {
			return nil
		}
		commit, err := r.tagCommit(ref)
		if err != nil {
			return fmt.Errorf("resolving tag %s: %w", name, err)
		}
		latest = &Tag{Name: name, Version: v, Commit: commit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *Repository) tagCommit(ref *plumbing.Reference) (plumbing.Hash, error) {
	tag, err := r.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := tag.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return commit.Hash, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}

// ancestors returns every commit reachable from hash, hash included.
func (r *Repository) ancestors(hash plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", hash, err)
	}
	seen := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	return seen, err
}

// Options controls how commit messages become records
type Options struct {
	// IncludeNonConventional keeps commits whose subject is not a
	// conventional commit, with an empty type.
	IncludeNonConventional bool
	Concurrency            int
	Logger                 *slog.Logger
}

// Commits returns the commits attributable to m since its last release tag,
// newest first. Files under any path in exclude do not count, so a parent
// module is not credited with its children's commits.
func (r *Repository) Commits(ctx context.Context, m models.Module, exclude []string, opts Options) ([]models.CommitRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	tag, err := r.LatestTag(m)
	if err != nil {
		return nil, err
	}
	var released map[plumbing.Hash]bool
	if tag != nil {
		if released, err = r.ancestors(tag.Commit); err != nil {
			return nil, err
		}
	}

	iter, err := r.repo.Log(&git.LogOptions{
		From:       head,
		PathFilter: PathFilter(m.Path, exclude),
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}
	defer iter.Close()

	var out []models.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if released[c.Hash] {
			return nil
		}
		if len(c.ParentHashes) > 1 {
			return nil
		}
		rec, ok := conventional.Parse(c.Hash.String(), c.Message)
		if conventional.IsMerge(rec.Subject) {
			return nil
		}
		if !ok && !opts.IncludeNonConventional {
			return nil
		}
		rec.Module = m.ID
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PathFilter matches files inside modulePath but outside every excluded path
func PathFilter(modulePath string, exclude []string) func(string) bool {
	base := cleanPath(modulePath)
	excluded := make([]string, 0, len(exclude))
	for _, e := range exclude {
		excluded = append(excluded, cleanPath(e))
	}
	return func(file string) bool {
		if !within(base, file) {
			return false
		}
		return !slices.ContainsFunc(excluded, func(e string) bool { return within(e, file) })
	}
}

func cleanPath(p string) string {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	if p == "" {
		return "."
	}
	return p
}

func within(dir, file string) bool {
	if dir == "." {
		return true
	}
	return file == dir || strings.HasPrefix(file, dir+"/")
}

type moduleCommits struct {
	id      string
	commits []models.CommitRecord
}

// CommitsForGraph looks up every module's commits in parallel and returns
// the complete map only once all lookups have finished.
func CommitsForGraph(ctx context.Context, repoPath string, g *graph.Graph, opts Options) (map[string][]models.CommitRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	p := pool.NewWithResults[moduleCommits]().
		WithContext(ctx).
		WithMaxGoroutines(workers).
		WithCancelOnError()

	for _, m := range g.Modules() {
		exclude := g.Children(m.ID)
		p.Go(func(ctx context.Context) (moduleCommits, error) {
			repo, err := Open(repoPath)
			if err != nil {
				return moduleCommits{}, err
			}
			commits, err := repo.Commits(ctx, m, exclude, opts)
			if err != nil {
				return moduleCommits{}, fmt.Errorf("module %q: %w", m.ID, err)
			}
			logger.Debug("collected commits", slog.String("module", m.ID), slog.Int("count", len(commits)))
			return moduleCommits{id: m.ID, commits: commits}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.CommitRecord, len(results))
	for _, r := range results {
		out[r.id] = r.commits
	}
	return out, nil
}
