package cmd

import (
	"testing"

	"github.com/pders01/git-release/internal/models"
)

func TestReportChangelog(t *testing.T) {
	repo := setupReleasedRepo(t)
	defer repo.Cleanup()
	chdir(t, repo.Path)
	resetConfig(t)

	if err := runReport(nil, []string{"changelog"}); err != nil {
		t.Fatalf("changelog report failed: %v", err)
	}
}

func TestReportUnknownTemplate(t *testing.T) {
	if err := runReport(nil, []string{"weekly"}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestChangelogLine(t *testing.T) {
	tests := []struct {
		name   string
		commit models.CommitRecord
		want   string
	}{
		{
			name:   "scoped",
			commit: models.CommitRecord{Hash: "0123456789abcdef", Scope: "api", Subject: "add handler"},
			want:   "- **api:** add handler (0123456)",
		},
		{
			name:   "short hash",
			commit: models.CommitRecord{Hash: "abc", Subject: "fix typo"},
			want:   "- fix typo (abc)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := changelogLine(tt.commit); got != tt.want {
				t.Errorf("changelogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
