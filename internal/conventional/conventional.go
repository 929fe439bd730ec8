// Package conventional parses commit messages written in the Conventional
// Commits format into commit records.
package conventional

import (
	"regexp"
	"strings"

	"github.com/pders01/git-release/internal/models"
)

// header matches "type(scope)!: subject".
var header = regexp.MustCompile(`^([A-Za-z][\w-]*)(?:\(([^()]*)\))?(!)?:\s+(.+)$`)

// breakingFooter matches the footer tokens that mark a breaking change.
var breakingFooter = regexp.MustCompile(`(?m)^BREAKING[ -]CHANGE:\s`)

// Parse parses a full commit message. ok is false when the header is not a
// conventional commit; the returned record then carries the raw subject and
// an empty type.
func Parse(hash, message string) (models.CommitRecord, bool) {
	subject, body, _ := strings.Cut(strings.TrimSpace(message), "\n")
	subject = strings.TrimSpace(subject)

	rec := models.CommitRecord{Hash: hash, Subject: subject}

	m := header.FindStringSubmatch(subject)
	if m == nil {
		return rec, false
	}

	rec.Type = strings.ToLower(m[1])
	rec.Scope = strings.TrimSpace(m[2])
	rec.Breaking = m[3] == "!" || breakingFooter.MatchString(body)
	rec.Subject = strings.TrimSpace(m[4])
	return rec, true
}

// IsMerge reports whether a subject is a generated merge or revert-of-merge
// message that should not count towards a bump.
func IsMerge(subject string) bool {
	return strings.HasPrefix(subject, "Merge branch ") ||
		strings.HasPrefix(subject, "Merge pull request ") ||
		strings.HasPrefix(subject, "Merge remote-tracking branch ")
}
