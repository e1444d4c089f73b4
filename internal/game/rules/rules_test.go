package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicehall/internal/game/rules"
)

func TestDefault(t *testing.T) {
	r := rules.Default()
	assert.Equal(t, 10000, r.TargetScore)
	assert.Equal(t, 350, r.BustThreshold)
	assert.Equal(t, 3, r.BustRollCount)
	assert.True(t, r.StraightAttempt)
	assert.NoError(t, r.Validate())
}

func TestLoadDir_MissingDirYieldsDefaults(t *testing.T) {
	r, err := rules.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, rules.Default(), r)
}

func TestLoadDir_OverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "short.yaml"),
		[]byte("target_score: 5000\n"), 0o644)
	require.NoError(t, err)

	r, err := rules.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 5000, r.TargetScore)
	assert.Equal(t, 350, r.BustThreshold, "absent keys keep defaults")
	assert.True(t, r.StraightAttempt)
}

func TestLoadDir_LexicalOrderLastWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-base.yaml"),
		[]byte("target_score: 5000\nbust_threshold: 500\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-tweak.yaml"),
		[]byte("target_score: 7500\n"), 0o644))

	r, err := rules.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 7500, r.TargetScore)
	assert.Equal(t, 500, r.BustThreshold)
}

func TestLoadDir_RejectsInvalidRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"),
		[]byte("target_score: 0\n"), 0o644))

	_, err := rules.LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDir_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"),
		[]byte(":::not yaml"), 0o644))

	_, err := rules.LoadDir(dir)
	assert.Error(t, err)
}
