package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempGitRepo creates a temporary git repository for testing
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a new temporary git repository with one initial commit
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "release-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	r := &TempGitRepo{Path: tmpDir, T: t}

	for _, args := range [][]string{
		{"init", "-b", "main"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
		{"config", "tag.gpgsign", "false"},
	} {
		if _, err := r.run(args...); err != nil {
			os.RemoveAll(tmpDir)
			t.Fatalf("failed to set up git repo: %v", err)
		}
	}

	r.CreateFile("README.md", "# Test Repository\n")
	r.Commit("Initial commit")
	return r
}

// Cleanup removes the temporary git repository
func (r *TempGitRepo) Cleanup() {
	r.T.Helper()
	if err := os.RemoveAll(r.Path); err != nil {
		r.T.Errorf("failed to cleanup temp repo: %v", err)
	}
}

// CreateFile creates a file in the repository
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// CreateModule writes a go.mod and VERSION file for a Go module at dir.
// requires lists module paths the new module depends on at v0.0.0.
func (r *TempGitRepo) CreateModule(dir, modulePath, version string, requires ...string) {
	r.T.Helper()
	var b strings.Builder
	b.WriteString("module " + modulePath + "\n\ngo 1.22\n")
	for _, req := range requires {
		b.WriteString("\nrequire " + req + " v0.0.0\n")
	}
	r.CreateFile(filepath.Join(dir, "go.mod"), b.String())
	if version != "" {
		r.CreateFile(filepath.Join(dir, "VERSION"), version+"\n")
	}
}

// Commit stages and commits all changes
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	if _, err := r.run("add", "."); err != nil {
		r.T.Fatalf("failed to stage files: %v", err)
	}
	if _, err := r.run("commit", "--allow-empty", "-m", message); err != nil {
		r.T.Fatalf("failed to commit: %v", err)
	}
}

// Tag creates a lightweight tag at HEAD
func (r *TempGitRepo) Tag(name string) {
	r.T.Helper()
	if _, err := r.run("tag", name); err != nil {
		r.T.Fatalf("failed to tag %s: %v", name, err)
	}
}

// AnnotatedTag creates an annotated tag at HEAD
func (r *TempGitRepo) AnnotatedTag(name string) {
	r.T.Helper()
	if _, err := r.run("tag", "-a", name, "-m", "release "+name); err != nil {
		r.T.Fatalf("failed to tag %s: %v", name, err)
	}
}

// Head returns the full hash of HEAD
func (r *TempGitRepo) Head() string {
	r.T.Helper()
	out, err := r.run("rev-parse", "HEAD")
	if err != nil {
		r.T.Fatalf("failed to resolve HEAD: %v", err)
	}
	return out
}

// Tags returns all tag names in the repository
func (r *TempGitRepo) Tags() []string {
	r.T.Helper()
	out, err := r.run("tag", "--list")
	if err != nil {
		r.T.Fatalf("failed to list tags: %v", err)
	}
	return parseLines(out)
}

// LastMessage returns the subject of the HEAD commit
func (r *TempGitRepo) LastMessage() string {
	r.T.Helper()
	out, err := r.run("log", "-1", "--format=%s")
	if err != nil {
		r.T.Fatalf("failed to read log: %v", err)
	}
	return out
}

// ReadFile reads a file from the working tree
func (r *TempGitRepo) ReadFile(name string) string {
	r.T.Helper()
	data, err := os.ReadFile(filepath.Join(r.Path, name))
	if err != nil {
		r.T.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func (r *TempGitRepo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}

// parseLines splits output into non-empty lines
func parseLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
