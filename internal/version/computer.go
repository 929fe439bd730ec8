package version

import (
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/pders01/git-release/internal/models"
)

// ErrNotMonotonic is returned when a bumped module would not move forward.
var ErrNotMonotonic = errors.New("computed version does not increase")

// Computer computes next versions for one run. The pre-release identifier,
// including any timestamp, is resolved once so every module bumped in the
// same run shares it.
type Computer struct {
	mode       models.ModeFlags
	identifier string
	suffix     string
}

// NewComputer validates the mode flags and resolves the run identifier
func NewComputer(mode models.ModeFlags, now time.Time) (*Computer, error) {
	c := &Computer{mode: mode, suffix: mode.SnapshotSuffix()}

	if mode.Prerelease.Enabled {
		if mode.Prerelease.Identifier == "" {
			return nil, fmt.Errorf("pre-release mode requires an identifier")
		}
		c.identifier = mode.Prerelease.Identifier
		if mode.TimestampIdentifier {
			c.identifier = TimestampIdentifier(mode.Prerelease.Identifier, now)
		}
		if _, err := semver.New(0, 0, 0, "", "").SetPrerelease(c.identifier + ".0"); err != nil {
			return nil, fmt.Errorf("invalid pre-release identifier %q: %w", c.identifier, err)
		}
	}

	if mode.EcosystemSnapshot.Enabled {
		for _, probe := range []string{"0.0.0", "0.0.0-a.0"} {
			if _, err := semver.StrictNewVersion(probe + c.suffix); err != nil {
				return nil, fmt.Errorf("invalid snapshot suffix %q: %w", c.suffix, err)
			}
		}
	}

	if mode.BuildMetadata.Enabled {
		if mode.BuildMetadata.Value == "" {
			return nil, fmt.Errorf("build metadata mode requires a value")
		}
		if _, err := semver.New(0, 0, 0, "", "").SetMetadata(mode.BuildMetadata.Value); err != nil {
			return nil, fmt.Errorf("invalid build metadata %q: %w", mode.BuildMetadata.Value, err)
		}
	}

	return c, nil
}

// TimestampIdentifier returns "<identifier>.<YYYYMMDD>.<HHMM>" in UTC.
// HHMM is written as a plain number (0905 becomes 905) because SemVer
// forbids leading zeros in numeric identifiers; numeric ordering is kept.
func TimestampIdentifier(identifier string, now time.Time) string {
	utc := now.UTC()
	return fmt.Sprintf("%s.%s.%d", identifier, utc.Format("20060102"), utc.Hour()*100+utc.Minute())
}

// Identifier returns the pre-release identifier used for this run
func (c *Computer) Identifier() string {
	return c.identifier
}

// Compute runs the four stages on d and fills in ToVersion. It may also
// set NeedsWrite and, for modules that had no other reason to change,
// Reason. Decisions still not needing a write keep their from-version.
func (c *Computer) Compute(d *models.Decision) (string, error) {
	if d.FromVersion == nil {
		return "", &ParseError{ModuleID: d.ModuleID, Err: errors.New("no version recorded")}
	}

	forced := d.Reason == models.ReasonForcedUnchanged && c.mode.Prerelease.Enabled
	changing := d.Bump != models.BumpNone || forced
	if d.Bump != models.BumpNone {
		d.NeedsWrite = true
	}

	v := c.base(d)
	if changing && c.mode.Prerelease.Enabled {
		v = c.prerelease(v)
	}

	if c.mode.EcosystemSnapshot.Enabled {
		before := v.String()
		next, err := appendSuffix(v, c.suffix)
		if err != nil {
			return "", fmt.Errorf("module %q: %w", d.ModuleID, err)
		}
		v = next
		if v.String() != before {
			c.flag(d, models.ReasonEcosystemSnapshot)
		}
	}

	if c.mode.BuildMetadata.Enabled {
		next, err := setMetadata(v, c.mode.BuildMetadata.Value)
		if err != nil {
			return "", fmt.Errorf("module %q: %w", d.ModuleID, err)
		}
		v = next
		c.flag(d, models.ReasonBuildMetadata)
	}

	if !d.NeedsWrite {
		d.ToVersion = d.FromVersion.String()
		return d.ToVersion, nil
	}

	// Snapshot suffixes compare lexically, so precedence is checked without them.
	if changing && !c.unsuffixed(v).GreaterThan(c.unsuffixed(d.FromVersion)) {
		return "", fmt.Errorf("module %q: %w: %s -> %s", d.ModuleID, ErrNotMonotonic, d.FromVersion, v)
	}

	d.ToVersion = v.String()
	return d.ToVersion, nil
}

func (c *Computer) flag(d *models.Decision, reason models.Reason) {
	d.NeedsWrite = true
	if d.Reason == models.ReasonUnchanged {
		d.Reason = reason
	}
}

// base is stage 1.
func (c *Computer) base(d *models.Decision) *semver.Version {
	from := d.FromVersion
	if d.Bump != models.BumpNone {
		return Bump(from, d.Bump)
	}
	if d.Reason != models.ReasonForcedUnchanged || !c.mode.Prerelease.Enabled {
		return from
	}
	current := withoutMetadata(c.unsuffixed(from))
	if IsSamePrereleaseLine(current, c.identifier) {
		return current
	}
	return Bump(current, models.BumpPatch)
}

// prerelease is stage 2.
func (c *Computer) prerelease(v *semver.Version) *semver.Version {
	current := withoutMetadata(c.unsuffixed(v))
	pre := c.identifier + ".0"
	if n, ok := PrereleaseCounter(current.Prerelease(), c.identifier); ok {
		pre = fmt.Sprintf("%s.%d", c.identifier, n+1)
	}
	return semver.New(current.Major(), current.Minor(), current.Patch(), pre, "")
}

// unsuffixed removes the snapshot suffix of a previous run. Outside
// snapshot mode the suffix is an ordinary pre-release identifier.
func (c *Computer) unsuffixed(v *semver.Version) *semver.Version {
	if !c.mode.EcosystemSnapshot.Enabled {
		return v
	}
	return stripSuffix(v, c.suffix)
}
