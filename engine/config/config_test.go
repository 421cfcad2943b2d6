package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint32(300), cfg.Window.Width)
	assert.Equal(t, uint32(300), cfg.Window.Height)
	assert.Equal(t, uint32(1), cfg.Renderer.SampleCount)
	assert.Equal(t, PresentModeFIFO, cfg.Renderer.PresentMode)
	assert.False(t, cfg.Renderer.ShaderObject)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vkgears.toml")
	data := `
[window]
width = 800
height = 600
fullscreen = true

[renderer]
sample_count = 4
present_mode = "mailbox"
shader_object = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height)
	assert.True(t, cfg.Window.Fullscreen)
	assert.Equal(t, uint32(4), cfg.Renderer.SampleCount)
	assert.Equal(t, PresentModeMailbox, cfg.Renderer.PresentMode)
	assert.True(t, cfg.Renderer.ShaderObject)
	// untouched defaults survive
	assert.Equal(t, "vkgears", cfg.Window.Title)
}

func TestLoadRejectsBadSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vkgears.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nsample_count = 3\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyArgs(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyArgs([]string{
		"-samples", "8",
		"-present-immediate",
		"-fullscreen",
		"-info",
		"-size", "1024x768",
		"-shader-object",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(8), cfg.Renderer.SampleCount)
	assert.Equal(t, PresentModeImmediate, cfg.Renderer.PresentMode)
	assert.True(t, cfg.Window.Fullscreen)
	assert.True(t, cfg.Renderer.PrintInfo)
	assert.Equal(t, uint32(1024), cfg.Window.Width)
	assert.Equal(t, uint32(768), cfg.Window.Height)
	assert.True(t, cfg.Renderer.ShaderObject)
}

func TestApplyArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-bogus"},
		{"-samples"},
		{"-samples", "3"},
		{"-samples", "x"},
		{"-size"},
		{"-size", "x300"},
	} {
		cfg := Default()
		assert.Error(t, cfg.ApplyArgs(args), "args %v", args)
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("640x480")
	require.NoError(t, err)
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)

	// a missing height keeps the default
	w, h, err = ParseSize("640")
	require.NoError(t, err)
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(300), h)

	w, h, err = ParseSize("640x")
	require.NoError(t, err)
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(300), h)

	_, _, err = ParseSize("")
	assert.Error(t, err)
}
