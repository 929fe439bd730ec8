package graph

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/git-release/internal/models"
)

func mod(id, path string, affects ...string) models.Module {
	return models.Module{
		ID:      id,
		Name:    id,
		Path:    path,
		Kind:    models.KindSubmodule,
		Version: semver.MustParse("1.0.0"),
		Affects: affects,
	}
}

func TestNewSortsAndDeduplicatesAffects(t *testing.T) {
	g, err := New([]models.Module{
		mod("lib", "lib", "web", "app", "web"),
		mod("app", "app"),
		mod("web", "web"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "lib", "web"}, g.IDs())
	affects, err := g.Affects("lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "web"}, affects)

	deps, err := g.DependsOn("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib"}, deps)
}

func TestNewRejectsInvalidGraphs(t *testing.T) {
	noVersion := mod("b", "b")
	noVersion.Version = nil

	tests := []struct {
		name    string
		modules []models.Module
		want    error
	}{
		{"empty", nil, ErrInvalidGraph},
		{"empty id", []models.Module{mod("", "x")}, ErrInvalidGraph},
		{"duplicate", []models.Module{mod("a", "a"), mod("a", "b")}, ErrDuplicateModule},
		{"unknown affects", []models.Module{mod("a", "a", "ghost")}, ErrUnknownModule},
		{"missing version", []models.Module{mod("a", "a"), noVersion}, ErrMissingVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.modules)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestUnknownModuleLookups(t *testing.T) {
	g, err := New([]models.Module{mod("a", "a")})
	require.NoError(t, err)

	_, err = g.Affects("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
	_, err = g.Reach("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "nope", gerr.ModuleID)
}

func TestReachFollowsCycles(t *testing.T) {
	g, err := New([]models.Module{
		mod("a", "a", "b"),
		mod("b", "b", "c"),
		mod("c", "c", "a"),
		mod("d", "d"),
	})
	require.NoError(t, err)

	reach, err := g.Reach("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, reach)

	reach, err = g.Reach("d")
	require.NoError(t, err)
	assert.Empty(t, reach)
}

func TestChildren(t *testing.T) {
	root := mod("root", ".")
	root.Kind = models.KindRoot
	g, err := New([]models.Module{
		root,
		mod("libs/core", "libs/core"),
		mod("libs/core/ext", "libs/core/ext"),
		mod("libs/corex", "libs/corex"),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"libs/core", "libs/core/ext", "libs/corex"}, g.Children("root"))
	assert.Equal(t, []string{"libs/core/ext"}, g.Children("libs/core"))
	assert.Empty(t, g.Children("libs/corex"))
	assert.Nil(t, g.Children("missing"))
}
