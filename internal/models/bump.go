package models

import "fmt"

// BumpType is the magnitude of a version change. The zero value is BumpNone
// and the constants are declared in ascending order, so plain integer
// comparison is the precedence order.
type BumpType int

const (
	BumpNone BumpType = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// AllBumpTypes lists every bump type from lowest to highest
var AllBumpTypes = []BumpType{BumpNone, BumpPatch, BumpMinor, BumpMajor}

var bumpNames = map[BumpType]string{
	BumpNone:  "none",
	BumpPatch: "patch",
	BumpMinor: "minor",
	BumpMajor: "major",
}

func (b BumpType) String() string {
	if name, ok := bumpNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BumpType(%d)", int(b))
}

// Valid reports whether b is one of the four known bump types
func (b BumpType) Valid() bool {
	return b >= BumpNone && b <= BumpMajor
}

// ParseBumpType parses a bump type token (none, patch, minor, major)
func ParseBumpType(s string) (BumpType, error) {
	for b, name := range bumpNames {
		if name == s {
			return b, nil
		}
	}
	return BumpNone, fmt.Errorf("invalid bump type %q (must be: none, patch, minor, major)", s)
}

// MaxBump merges two candidate bumps for the same module.
// It is the only merge the engine performs.
func MaxBump(a, b BumpType) BumpType {
	if a > b {
		return a
	}
	return b
}

// MarshalText implements encoding.TextMarshaler
func (b BumpType) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid bump type %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BumpType) UnmarshalText(text []byte) error {
	parsed, err := ParseBumpType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
