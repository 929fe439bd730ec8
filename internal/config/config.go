package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/pders01/git-release/internal/ecosystem"
	"github.com/pders01/git-release/internal/history"
	"github.com/pders01/git-release/internal/models"
)

// ErrInvalidConfig is returned when configuration values are rejected
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "GIT_RELEASE"

// FileName is the per-repository config file name
const FileName = ".release.toml"

// SetDefaults registers every default value with viper
func SetDefaults() {
	viper.SetDefault("policy.default_bump", models.BumpPatch.String())
	viper.SetDefault("policy.include_nonconventional", false)

	viper.SetDefault("prerelease.enabled", false)
	viper.SetDefault("prerelease.identifier", "alpha")
	viper.SetDefault("prerelease.timestamp", false)
	viper.SetDefault("prerelease.force_unchanged", false)

	viper.SetDefault("build_metadata.enabled", false)
	viper.SetDefault("build_metadata.value", "")

	viper.SetDefault("snapshot.enabled", false)
	viper.SetDefault("snapshot.suffix", models.DefaultSnapshotSuffix)

	viper.SetDefault("discovery.ecosystem", ecosystem.KindGo)
	viper.SetDefault("discovery.manifest", ecosystem.DefaultManifest)
	viper.SetDefault("discovery.version_file", ecosystem.DefaultVersionFile)
	viper.SetDefault("discovery.exclude", []string{})

	viper.SetDefault("git.tag", false)
	viper.SetDefault("git.commit", false)
	viper.SetDefault("git.push", false)
	viper.SetDefault("git.remote", "origin")
	viper.SetDefault("git.commit_message", "chore(release): publish modules")

	viper.SetDefault("history.concurrency", history.DefaultConcurrency)

	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// LoadPolicy builds the bump policy.
//
// Entries under [policy.commit_types] are merged over the default mapping.
// A [policy.dependency] table replaces the default rule as a whole and must
// therefore cover every bump type.
func LoadPolicy() (models.Policy, error) {
	p := models.DefaultPolicy()

	b, err := models.ParseBumpType(viper.GetString("policy.default_bump"))
	if err != nil {
		return models.Policy{}, invalid("policy.default_bump: %v", err)
	}
	p.DefaultBump = b

	for typ, raw := range viper.GetStringMapString("policy.commit_types") {
		rule, err := models.ParseTypeRule(strings.TrimSpace(raw))
		if err != nil {
			return models.Policy{}, invalid("policy.commit_types.%s: %v", typ, err)
		}
		p.CommitTypeBump[strings.ToLower(typ)] = rule
	}

	if dep := viper.GetStringMapString("policy.dependency"); len(dep) > 0 {
		rule := make(map[models.BumpType]models.BumpType, len(dep))
		for from, to := range dep {
			fb, err := models.ParseBumpType(from)
			if err != nil {
				return models.Policy{}, invalid("policy.dependency key %q: %v", from, err)
			}
			tb, err := models.ParseBumpType(strings.TrimSpace(to))
			if err != nil {
				return models.Policy{}, invalid("policy.dependency.%s: %v", from, err)
			}
			rule[fb] = tb
		}
		p.DependencyRule = rule
	}

	if err := p.Validate(); err != nil {
		return models.Policy{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// LoadModes builds the run-wide mode flags
func LoadModes() (models.ModeFlags, error) {
	m := models.ModeFlags{
		Prerelease: models.PrereleaseMode{
			Enabled:    viper.GetBool("prerelease.enabled"),
			Identifier: strings.TrimSpace(viper.GetString("prerelease.identifier")),
		},
		BuildMetadata: models.BuildMetadataMode{
			Enabled: viper.GetBool("build_metadata.enabled"),
			Value:   strings.TrimSpace(viper.GetString("build_metadata.value")),
		},
		TimestampIdentifier: viper.GetBool("prerelease.timestamp"),
		EcosystemSnapshot: models.SnapshotMode{
			Enabled: viper.GetBool("snapshot.enabled"),
			Suffix:  viper.GetString("snapshot.suffix"),
		},
		ForceUnchangedInPrerelease: viper.GetBool("prerelease.force_unchanged"),
	}
	if err := ValidateModes(m); err != nil {
		return models.ModeFlags{}, err
	}
	return m, nil
}

// ValidateModes rejects mode combinations that cannot produce a version.
// An empty build metadata value is allowed; callers fill it in.
func ValidateModes(m models.ModeFlags) error {
	if m.Prerelease.Enabled && m.Prerelease.Identifier == "" {
		return invalid("prerelease.identifier is required when pre-releases are enabled")
	}
	if m.EcosystemSnapshot.Enabled && m.EcosystemSnapshot.Suffix != "" &&
		!strings.HasPrefix(m.EcosystemSnapshot.Suffix, "-") {
		return invalid("snapshot.suffix %q must start with '-'", m.EcosystemSnapshot.Suffix)
	}
	return nil
}

// GetIncludeNonConventional reports whether commits without a conventional
// header count towards the default bump
func GetIncludeNonConventional() bool {
	return viper.GetBool("policy.include_nonconventional")
}

// GetEcosystemOptions returns the discovery settings rooted at root
func GetEcosystemOptions(root string) ecosystem.Options {
	return ecosystem.Options{
		Kind:        viper.GetString("discovery.ecosystem"),
		Root:        root,
		Manifest:    viper.GetString("discovery.manifest"),
		VersionFile: viper.GetString("discovery.version_file"),
		Suffix:      viper.GetString("snapshot.suffix"),
		Exclude:     viper.GetStringSlice("discovery.exclude"),
	}
}

// GetConcurrency returns the maximum number of parallel history lookups
func GetConcurrency() int {
	n := viper.GetInt("history.concurrency")
	if n <= 0 {
		return history.DefaultConcurrency
	}
	return n
}

// ShouldTag reports whether apply creates release tags
func ShouldTag() bool {
	return viper.GetBool("git.tag")
}

// ShouldCommit reports whether apply commits the version files
func ShouldCommit() bool {
	return viper.GetBool("git.commit")
}

// ShouldPush reports whether apply pushes the commit and tags
func ShouldPush() bool {
	return viper.GetBool("git.push")
}

// GetRemote returns the remote to push to
func GetRemote() string {
	return viper.GetString("git.remote")
}

// GetCommitMessage returns the subject of the release commit
func GetCommitMessage() string {
	return viper.GetString("git.commit_message")
}

// GetLogLevel returns the configured log level
func GetLogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return slog.LevelWarn, invalid("log.level: %v", err)
	}
	return level, nil
}

// GetLogFormat returns "text" or "json"
func GetLogFormat() string {
	if strings.EqualFold(viper.GetString("log.format"), "json") {
		return "json"
	}
	return "text"
}
