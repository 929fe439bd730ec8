package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxBumpIsAssociativeAndCommutative(t *testing.T) {
	for _, a := range AllBumpTypes {
		for _, b := range AllBumpTypes {
			assert.Equal(t, MaxBump(a, b), MaxBump(b, a))
			for _, c := range AllBumpTypes {
				assert.Equal(t, MaxBump(MaxBump(a, b), c), MaxBump(a, MaxBump(b, c)))
			}
		}
		assert.Equal(t, a, MaxBump(a, a))
	}
}

func TestParseBumpType(t *testing.T) {
	for _, b := range AllBumpTypes {
		got, err := ParseBumpType(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	_, err := ParseBumpType("huge")
	assert.Error(t, err)
}

func TestParseTypeRule(t *testing.T) {
	rule, err := ParseTypeRule("ignore")
	require.NoError(t, err)
	assert.True(t, rule.Ignore)

	rule, err = ParseTypeRule("minor")
	require.NoError(t, err)
	assert.Equal(t, TypeRule{Bump: BumpMinor}, rule)

	_, err = ParseTypeRule("sometimes")
	assert.Error(t, err)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	delete(p.DependencyRule, BumpMinor)
	err := p.Validate()
	assert.True(t, errors.Is(err, ErrNonTotalRule))

	p = DefaultPolicy()
	p.DependencyRule[BumpMajor] = BumpNone
	assert.ErrorIs(t, p.Validate(), ErrNonMonotonicRule)

	p = DefaultPolicy()
	p.CommitTypeBump["feat"] = TypeRule{Bump: BumpType(9)}
	assert.Error(t, p.Validate())
}

func TestPolicyCascade(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, BumpMinor, p.Cascade(BumpMajor))
	assert.Equal(t, BumpNone, p.Cascade(BumpPatch))
}
