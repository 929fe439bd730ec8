package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// IsGitRepo checks if current directory is a git repository
func IsGitRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// GetRepoRoot returns the top-level directory of the working tree
func GetRepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get repository root: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetCurrentBranch returns the current branch name
func GetCurrentBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// GetShortCommit returns the abbreviated hash of HEAD
func GetShortCommit() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// HasUncommittedChanges reports whether the working tree or index is dirty
func HasUncommittedChanges() (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to check status: %w", err)
	}
	return strings.TrimSpace(string(output)) != "", nil
}

// AddFiles stages files for commit
func AddFiles(files ...string) error {
	args := append([]string{"add", "--"}, files...)
	cmd := exec.Command("git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to add files: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Commit creates a commit with the given message
func Commit(message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to commit: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// TagExists checks if a tag exists
func TagExists(name string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "refs/tags/"+name)
	return cmd.Run() == nil
}

// CreateTag creates an annotated tag at HEAD
func CreateTag(name, message string) error {
	cmd := exec.Command("git", "tag", "-a", name, "-m", message)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create tag %s: %s: %w", name, strings.TrimSpace(string(output)), err)
	}
	return nil
}

// PushWithTags pushes the current branch and the given tags to remote
func PushWithTags(remote string, tags ...string) error {
	branch, err := GetCurrentBranch()
	if err != nil {
		return err
	}
	args := []string{"push", "--atomic", remote, branch}
	for _, tag := range tags {
		args = append(args, "refs/tags/"+tag)
	}
	cmd := exec.Command("git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to push to %s: %s: %w", remote, strings.TrimSpace(string(output)), err)
	}
	return nil
}
