package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero snap tolerance", func(c *Config) { c.SnapTolerance = 0 }},
		{"negative segmentize", func(c *Config) { c.SegmentizeMaxLength = -1 }},
		{"zero ratio", func(c *Config) { c.RatioThreshold = 0 }},
		{"hausdorff below tolerance", func(c *Config) { c.SimplifyMaxHausdorff = 0.1 }},
		{"smoothing window zero", func(c *Config) { c.SmoothingWindow = 0 }},
		{"min edge above merge threshold", func(c *Config) { c.MinEdgeLength = 2.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigInvalid)
		})
	}
}

func TestConfigFromJSON(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		cfg, err := ConfigFromJSON(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides applied", func(t *testing.T) {
		cfg, err := ConfigFromJSON([]byte(`{"ratio_threshold": 2.0, "debug_export_intermediate": true}`))
		require.NoError(t, err)
		assert.Equal(t, 2.0, cfg.RatioThreshold)
		assert.True(t, cfg.DebugExportIntermediate)
		assert.Equal(t, 0.5, cfg.SegmentizeMaxLength, "untouched fields keep defaults")
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		_, err := ConfigFromJSON([]byte(`{"snap_tolerance": -1}`))
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := ConfigFromJSON([]byte(`{`))
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
}
