// Package classify maps a module's commits to a single bump type.
package classify

import "github.com/pders01/git-release/internal/models"

// Commit returns the bump a single commit contributes under policy.
// A breaking commit is always major, whatever its type maps to.
func Commit(c models.CommitRecord, policy models.Policy) models.BumpType {
	if c.Breaking {
		return models.BumpMajor
	}
	rule, ok := policy.CommitTypeBump[c.Type]
	if !ok {
		return policy.DefaultBump
	}
	if rule.Ignore {
		return models.BumpNone
	}
	return rule.Bump
}

// Classify returns the maximum bump over all commits. No commits means none.
func Classify(commits []models.CommitRecord, policy models.Policy) models.BumpType {
	bump := models.BumpNone
	for _, c := range commits {
		bump = models.MaxBump(bump, Commit(c, policy))
		if bump == models.BumpMajor {
			break
		}
	}
	return bump
}

// All classifies every module's commits. Modules absent from commits are
// not present in the result.
func All(commits map[string][]models.CommitRecord, policy models.Policy) map[string]models.BumpType {
	out := make(map[string]models.BumpType, len(commits))
	for id, list := range commits {
		out[id] = Classify(list, policy)
	}
	return out
}
