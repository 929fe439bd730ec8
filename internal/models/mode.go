package models

// DefaultSnapshotSuffix is the Maven-style development build marker
const DefaultSnapshotSuffix = "-SNAPSHOT"

// PrereleaseMode configures pre-release numbering
type PrereleaseMode struct {
	Enabled    bool
	Identifier string
}

// BuildMetadataMode configures the +metadata suffix
type BuildMetadataMode struct {
	Enabled bool
	Value   string
}

// SnapshotMode configures the ecosystem snapshot suffix
type SnapshotMode struct {
	Enabled bool
	Suffix  string
}

// ModeFlags are the run-wide options that shape version computation
type ModeFlags struct {
	Prerelease                 PrereleaseMode
	BuildMetadata              BuildMetadataMode
	TimestampIdentifier        bool
	EcosystemSnapshot          SnapshotMode
	ForceUnchangedInPrerelease bool
}

// SnapshotSuffix returns the configured suffix, or the default one
func (m ModeFlags) SnapshotSuffix() string {
	if m.EcosystemSnapshot.Suffix == "" {
		return DefaultSnapshotSuffix
	}
	return m.EcosystemSnapshot.Suffix
}

// ForcesUnchanged reports whether modules without commits still get a pre-release
func (m ModeFlags) ForcesUnchanged() bool {
	return m.Prerelease.Enabled && m.ForceUnchangedInPrerelease
}
