package pointcloud

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultParticles, cfg.Particles)
	assert.Equal(t, PolicyRecompute, cfg.UpdatePolicy())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero particles", func(c *Config) { c.Particles = 0 }},
		{"negative particles", func(c *Config) { c.Particles = -3 }},
		{"zero height", func(c *Config) { c.Height = 0 }},
		{"negative fps", func(c *Config) { c.MaxFPS = -1 }},
		{"empty format", func(c *Config) { c.Format = "" }},
		{"bad policy", func(c *Config) { c.Policy = "euler" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader("particles: 130\npolicy: integrate\nmax_fps: 30\n"))
	require.NoError(t, err)
	assert.Equal(t, 130, cfg.Particles)
	assert.Equal(t, PolicyIntegrate, cfg.UpdatePolicy())
	assert.Equal(t, 30, cfg.MaxFPS)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1280, cfg.Width)

	empty, err := ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), empty)

	_, err = ReadConfig(strings.NewReader("particle_count: 4\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pointrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles: 4\nwidth: 800\ndebug: true\n"), 0o644))

	cfg, err := ParseConfig("pointrt", []string{"-config", path, "-particles", "65"})
	require.NoError(t, err)
	assert.Equal(t, 65, cfg.Particles)
	assert.Equal(t, 800, cfg.Width)
	assert.True(t, cfg.Debug)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig("pointrt", []string{"-particles", "0"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseUpdatePolicy(t *testing.T) {
	p, err := ParseUpdatePolicy("Integrate")
	require.NoError(t, err)
	assert.Equal(t, PolicyIntegrate, p)
	assert.False(t, p.RewritesParticles())

	p, err = ParseUpdatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRecompute, p)
	assert.True(t, p.RewritesParticles())
	assert.Equal(t, "recompute", p.String())
}
