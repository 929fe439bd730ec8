package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pders01/git-release/internal/testutil"
)

func TestCommitAndTag(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	oldWd, _ := os.Getwd()
	os.Chdir(repo.Path)
	defer os.Chdir(oldWd)

	if !IsGitRepo() {
		t.Fatal("expected a git repository")
	}

	dirty, err := HasUncommittedChanges()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if dirty {
		t.Error("fresh repository reported as dirty")
	}

	repo.CreateFile("VERSION", "1.0.0\n")
	dirty, err = HasUncommittedChanges()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !dirty {
		t.Error("untracked VERSION not reported")
	}

	if err := AddFiles("VERSION"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Commit("chore(release): 1.0.0"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := repo.LastMessage(); got != "chore(release): 1.0.0" {
		t.Errorf("last message = %q", got)
	}

	if TagExists("v1.0.0") {
		t.Error("tag exists before creation")
	}
	if err := CreateTag("v1.0.0", "release v1.0.0"); err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	if !TagExists("v1.0.0") {
		t.Error("tag missing after creation")
	}
	if err := CreateTag("v1.0.0", "again"); err == nil {
		t.Error("expected error for duplicate tag")
	}

	short, err := GetShortCommit()
	if err != nil {
		t.Fatalf("short commit failed: %v", err)
	}
	if len(short) < 7 || repo.Head()[:len(short)] != short {
		t.Errorf("short commit %q is not a prefix of HEAD", short)
	}

	branch, err := GetCurrentBranch()
	if err != nil {
		t.Fatalf("branch failed: %v", err)
	}
	if branch != "main" {
		t.Errorf("branch = %q, want main", branch)
	}

	root, err := GetRepoRoot()
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(repo.Path)
	got, _ := filepath.EvalSymlinks(root)
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
}

func TestNotGitRepo(t *testing.T) {
	tmpDir := t.TempDir()

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if IsGitRepo() {
		t.Error("temp dir reported as git repository")
	}
	if _, err := GetShortCommit(); err == nil {
		t.Error("expected error outside a repository")
	}
}
