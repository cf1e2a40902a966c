package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	r := DefaultRules()
	assert.Equal(t, []string{model.FieldWeight, model.FieldFoldedDims, model.FieldMaxChildLb}, r.CoreFields)
	assert.True(t, r.KnownTerrain(model.TerrainJogging))
	assert.True(t, r.KnownTerrain(model.TerrainAllTerrain))
	assert.False(t, r.KnownTerrain("lunar"))
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `policy:
  terrains:
    - smooth
    - boardwalk
  scope_keywords:
    - excludes
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	assert.True(t, r.KnownTerrain("boardwalk"))
	assert.False(t, r.KnownTerrain(model.TerrainJogging))
	// Unset sections fall back to defaults.
	assert.Equal(t, DefaultRules().CoreFields, r.CoreFields)
	assert.Equal(t, []string{"excludes"}, r.ScopeKeywords)
}

func TestLoadRules_MissingFile(t *testing.T) {
	t.Parallel()

	r, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	// Defaults still come back so a caller may choose to continue.
	assert.Equal(t, DefaultRules().CoreFields, r.CoreFields)
}

func TestLoadRules_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: [not a map"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy: parse rules")
}
