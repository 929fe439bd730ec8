package models

import "github.com/Masterminds/semver/v3"

// Reason records why a decision ended up with its version
type Reason string

const (
	ReasonUnchanged         Reason = "unchanged"
	ReasonCommits           Reason = "commits"
	ReasonCascade           Reason = "cascade"
	ReasonForcedUnchanged   Reason = "forced-unchanged"
	ReasonBuildMetadata     Reason = "build-metadata"
	ReasonEcosystemSnapshot Reason = "ecosystem-snapshot"
)

// Decision is the per-module, per-run version decision.
// The cascade and version stages mutate it in place.
type Decision struct {
	ModuleID    string
	FromVersion *semver.Version
	ToVersion   string
	Bump        BumpType
	Reason      Reason
	NeedsWrite  bool
}

// NewDecision creates the initial decision for a module
func NewDecision(m Module) *Decision {
	return &Decision{
		ModuleID:    m.ID,
		FromVersion: m.Version,
		Bump:        BumpNone,
		Reason:      ReasonUnchanged,
	}
}

// From returns the starting version as a string
func (d *Decision) From() string {
	if d.FromVersion == nil {
		return ""
	}
	return d.FromVersion.String()
}
