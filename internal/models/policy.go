package models

import (
	"errors"
	"fmt"
)

// IgnoreToken marks a commit type that never contributes to a bump
const IgnoreToken = "ignore"

// TypeRule is what a single commit type contributes to a module's bump
type TypeRule struct {
	Bump   BumpType
	Ignore bool
}

// ParseTypeRule parses a commit type mapping value: a bump type token or "ignore"
func ParseTypeRule(s string) (TypeRule, error) {
	if s == IgnoreToken {
		return TypeRule{Ignore: true}, nil
	}
	b, err := ParseBumpType(s)
	if err != nil {
		return TypeRule{}, err
	}
	return TypeRule{Bump: b}, nil
}

func (r TypeRule) String() string {
	if r.Ignore {
		return IgnoreToken
	}
	return r.Bump.String()
}

// Policy maps commits to bump types and bump types to dependent bumps.
// The engine only ever reads it.
type Policy struct {
	DefaultBump    BumpType
	CommitTypeBump map[string]TypeRule
	DependencyRule map[BumpType]BumpType
}

// DefaultPolicy is the conventional-commits policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		DefaultBump: BumpPatch,
		CommitTypeBump: map[string]TypeRule{
			"feat":     {Bump: BumpMinor},
			"fix":      {Bump: BumpPatch},
			"perf":     {Bump: BumpPatch},
			"refactor": {Bump: BumpPatch},
			"revert":   {Bump: BumpPatch},
			"docs":     {Ignore: true},
			"style":    {Ignore: true},
			"test":     {Ignore: true},
			"chore":    {Ignore: true},
			"ci":       {Ignore: true},
			"build":    {Ignore: true},
		},
		DependencyRule: map[BumpType]BumpType{
			BumpNone:  BumpNone,
			BumpPatch: BumpNone,
			BumpMinor: BumpPatch,
			BumpMajor: BumpMinor,
		},
	}
}

var (
	// ErrNonTotalRule is returned when the dependency rule misses a bump type
	ErrNonTotalRule = errors.New("dependency rule is not total")
	// ErrNonMonotonicRule is returned when a larger upstream bump would
	// produce a smaller downstream bump
	ErrNonMonotonicRule = errors.New("dependency rule is not monotonic")
)

// Validate checks the invariants the engine relies on
func (p Policy) Validate() error {
	if !p.DefaultBump.Valid() {
		return fmt.Errorf("invalid default bump %d", int(p.DefaultBump))
	}
	for typ, rule := range p.CommitTypeBump {
		if typ == "" {
			return fmt.Errorf("commit type mapping has an empty type")
		}
		if !rule.Ignore && !rule.Bump.Valid() {
			return fmt.Errorf("invalid bump for commit type %q", typ)
		}
	}
	for _, b := range AllBumpTypes {
		to, ok := p.DependencyRule[b]
		if !ok {
			return fmt.Errorf("%w: no entry for %s", ErrNonTotalRule, b)
		}
		if !to.Valid() {
			return fmt.Errorf("invalid dependency bump for %s", b)
		}
	}
	for i := 1; i < len(AllBumpTypes); i++ {
		lo, hi := AllBumpTypes[i-1], AllBumpTypes[i]
		if p.DependencyRule[hi] < p.DependencyRule[lo] {
			return fmt.Errorf("%w: %s yields %s but %s yields %s", ErrNonMonotonicRule,
				hi, p.DependencyRule[hi], lo, p.DependencyRule[lo])
		}
	}
	return nil
}

// Cascade returns the bump a dependent receives when its dependency gets b
func (p Policy) Cascade(b BumpType) BumpType {
	return p.DependencyRule[b]
}
