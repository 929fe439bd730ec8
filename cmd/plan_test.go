package cmd

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/git-release/internal/config"
	"github.com/pders01/git-release/internal/engine"
	"github.com/pders01/git-release/internal/models"
	"github.com/pders01/git-release/internal/testutil"
)

// resetConfig gives every test a fresh viper with defaults, as initConfig
// would for a repository without a config file.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

// setupReleasedRepo creates a root module depending on a core module, both
// released, followed by a feature commit in core.
func setupReleasedRepo(t *testing.T) *testutil.TempGitRepo {
	t.Helper()
	repo := testutil.NewTempGitRepo(t)

	repo.CreateModule(".", "example.com/app", "1.0.0", "example.com/app/core")
	repo.CreateModule("core", "example.com/app/core", "2.0.0")
	repo.Commit("chore: scaffold modules")
	repo.Tag("v1.0.0")
	repo.Tag("core/v2.0.0")

	repo.CreateFile("core/core.go", "package core\n")
	repo.Commit("feat: add core api")
	return repo
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func decisionFor(t *testing.T, result *engine.Result, id string) *models.Decision {
	t.Helper()
	for _, d := range result.Decisions {
		if d.ModuleID == id {
			return d
		}
	}
	t.Fatalf("no decision for %s", id)
	return nil
}

func TestPlanCascadesToDependents(t *testing.T) {
	repo := setupReleasedRepo(t)
	defer repo.Cleanup()
	chdir(t, repo.Path)
	resetConfig(t)

	plan, err := buildPlan(context.Background(), &releaseFlags{})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	core := decisionFor(t, plan.result, "example.com/app/core")
	if core.ToVersion != "2.1.0" || core.Reason != models.ReasonCommits {
		t.Errorf("core = %s (%s), want 2.1.0 (commits)", core.ToVersion, core.Reason)
	}

	app := decisionFor(t, plan.result, "example.com/app")
	if app.ToVersion != "1.0.1" || app.Reason != models.ReasonCascade {
		t.Errorf("app = %s (%s), want 1.0.1 (cascade)", app.ToVersion, app.Reason)
	}

	if got := repo.ReadFile("core/VERSION"); got != "2.0.0\n" {
		t.Errorf("plan modified core/VERSION: %q", got)
	}

	planFlags.reset()
	if err := runPlan(nil, []string{}); err != nil {
		t.Fatalf("plan command failed: %v", err)
	}
	planFlags.json = true
	defer planFlags.reset()
	if err := runPlan(nil, []string{}); err != nil {
		t.Fatalf("plan --json failed: %v", err)
	}
}

func TestPlanModes(t *testing.T) {
	repo := setupReleasedRepo(t)
	defer repo.Cleanup()
	chdir(t, repo.Path)

	tests := []struct {
		name  string
		flags releaseFlags
		core  string
		app   string
	}{
		{
			name:  "prerelease",
			flags: releaseFlags{prerelease: "rc"},
			core:  "2.1.0-rc.0",
			app:   "1.0.1-rc.0",
		},
		{
			name:  "snapshot",
			flags: releaseFlags{snapshot: true},
			core:  "2.1.0-SNAPSHOT",
			app:   "1.0.1-SNAPSHOT",
		},
		{
			name:  "build metadata",
			flags: releaseFlags{buildMetadata: "ci.7"},
			core:  "2.1.0+ci.7",
			app:   "1.0.1+ci.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			plan, err := buildPlan(context.Background(), &tt.flags)
			if err != nil {
				t.Fatalf("plan failed: %v", err)
			}
			if got := decisionFor(t, plan.result, "example.com/app/core").ToVersion; got != tt.core {
				t.Errorf("core = %s, want %s", got, tt.core)
			}
			if got := decisionFor(t, plan.result, "example.com/app").ToVersion; got != tt.app {
				t.Errorf("app = %s, want %s", got, tt.app)
			}
		})
	}
}

func TestPlanBuildMetadataFromCommit(t *testing.T) {
	repo := setupReleasedRepo(t)
	defer repo.Cleanup()
	chdir(t, repo.Path)
	resetConfig(t)

	plan, err := buildPlan(context.Background(), &releaseFlags{buildMetadata: buildMetadataFromCommit})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	core := decisionFor(t, plan.result, "example.com/app/core")
	short, ok := strings.CutPrefix(core.ToVersion, "2.1.0+")
	if !ok || len(short) < 7 || !strings.HasPrefix(repo.Head(), short) {
		t.Errorf("core = %s, want 2.1.0+<short HEAD>", core.ToVersion)
	}
}

func TestPlanRejectsInvalidPolicy(t *testing.T) {
	repo := setupReleasedRepo(t)
	defer repo.Cleanup()
	chdir(t, repo.Path)
	resetConfig(t)

	viper.Set("policy.default_bump", "huge")
	if _, err := buildPlan(context.Background(), &releaseFlags{}); err == nil {
		t.Error("expected error for invalid default bump")
	}
}

func TestPlanNotGitRepo(t *testing.T) {
	chdir(t, t.TempDir())
	resetConfig(t)

	planFlags.reset()
	if err := runPlan(nil, []string{}); err == nil {
		t.Error("expected error when not in git repo")
	}
}

