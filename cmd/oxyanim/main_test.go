package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command in an isolated home and working directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestNewAndInspectDemo(t *testing.T) {
	dir := workdir(t)
	path := filepath.Join(dir, "intro.yaml")

	out, err := execute(t, "new", path, "--demo", "--frame-max", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "created composition timeline")

	out, err = execute(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "frame max: 30")
	assert.Contains(t, out, "hero")
	assert.Contains(t, out, "0-20")
	assert.Contains(t, out, "10-30")
	assert.NotContains(t, out, "missing")

	_, err = execute(t, "new", path)
	assert.ErrorContains(t, err, "already exists")
	_, err = execute(t, "new", path, "--force", "--scope", "animation")
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	dir := workdir(t)
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	_, err := execute(t, "new", good)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bad, []byte("tracks: [unterminated"), 0644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.yaml: ok")

	out, err = execute(t, "validate", good, bad)
	assert.ErrorContains(t, err, "1 of 2 documents failed")
	assert.Contains(t, out, "bad.yaml: malformed")
}

func TestBakeWritesPalettes(t *testing.T) {
	dir := workdir(t)
	path := filepath.Join(dir, "intro.yaml")
	output := filepath.Join(dir, "intro.bake")
	_, err := execute(t, "new", path, "--demo")
	require.NoError(t, err)

	out, err := execute(t, "bake", path, "--end", "30", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "baked 31 frames of 1 actors")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, data, 16+31*skinning.PaletteSize)
	assert.Equal(t, "OXYB", string(data[:4]))
	assert.Equal(t, uint32(31), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, uint32(heroID), binary.LittleEndian.Uint32(data[12:16]))

	var frame5 skinning.GPUPalette
	require.NoError(t, frame5.Unmarshal(data[16+5*skinning.PaletteSize:]))
	assert.InDelta(t, 5, frame5.Bones[0][12], 1e-4)
}

func TestPlayStopsAfterDuration(t *testing.T) {
	dir := workdir(t)
	path := filepath.Join(dir, "intro.yaml")
	_, err := execute(t, "new", path, "--demo")
	require.NoError(t, err)

	out, err := execute(t, "play", path, "-d", "100ms")
	require.NoError(t, err)
	assert.Contains(t, out, "intro stopped at frame")
	assert.Contains(t, out, "hero")
}

func TestInvalidConfigFails(t *testing.T) {
	dir := workdir(t)
	cfg := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("engine:\n  tick_rate: -1\n"), 0644))

	_, err := execute(t, "version", "-c", cfg)
	assert.ErrorContains(t, err, "engine.tick_rate")
}

func TestVersion(t *testing.T) {
	workdir(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
