package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiscoveryMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DiscoveryMode
		wantErr bool
	}{
		{"similar", ModeSimilar, false},
		{"adjacent", ModeAdjacent, false},
		{"exploratory", ModeExploratory, false},
		{"wild", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDiscoveryMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShape_Valid(t *testing.T) {
	assert.True(t, Shape{Top: 50, Recent: 30, Random: 20}.Valid())
	assert.True(t, Shape{Top: 100}.Valid())
	assert.False(t, Shape{Top: 50, Recent: 30, Random: 30}.Valid())
	assert.False(t, Shape{Top: -10, Recent: 60, Random: 50}.Valid())
}

func TestShape_Identity(t *testing.T) {
	assert.Equal(t, "top50-recent30-random20", Shape{Top: 50, Recent: 30, Random: 20}.Identity())
}

func TestShapeFor_CoversAllModes(t *testing.T) {
	for _, mode := range []DiscoveryMode{ModeSimilar, ModeAdjacent, ModeExploratory} {
		shape := ShapeFor(mode)
		assert.True(t, shape.Valid(), "mode %s", mode)
	}
}

func TestDefaults_Validate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestSettings_EffectiveShape(t *testing.T) {
	s := Defaults()
	assert.Equal(t, ShapeFor(ModeSimilar), s.EffectiveShape(ModeSimilar))

	s.SamplingShape = &Shape{Top: 70, Recent: 20, Random: 10}
	assert.Equal(t, *s.SamplingShape, s.EffectiveShape(ModeSimilar))

	// Invalid override falls back to the mode default.
	s.SamplingShape = &Shape{Top: 70, Recent: 20, Random: 20}
	assert.Equal(t, ShapeFor(ModeSimilar), s.EffectiveShape(ModeSimilar))
}

func TestSettings_ValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"bad mode", func(s *Settings) { s.DiscoveryMode = "spicy" }},
		{"bad strategy", func(s *Settings) { s.SamplingStrategy = "everything" }},
		{"zero style cap", func(s *Settings) { s.MaxSelectedStyles = 0 }},
		{"zero recommendations", func(s *Settings) { s.MaxRecommendations = 0 }},
		{"zero target tokens", func(s *Settings) { s.TargetTokens = 0 }},
		{"window below target", func(s *Settings) { s.ContextWindow = 100; s.TargetTokens = 200 }},
		{"bad shape", func(s *Settings) { s.SamplingShape = &Shape{Top: 10} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"discovery_mode: similar\nstyle_filters: [rock, jazz]\ncache_ttl: 5m\n"), 0o644))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ModeSimilar, s.DiscoveryMode)
		assert.Equal(t, []string{"rock", "jazz"}, s.StyleFilters)
		assert.Equal(t, Duration(5*time.Minute), s.CacheTTL)
		assert.Equal(t, Defaults().MaxSelectedStyles, s.MaxSelectedStyles)
	})

	t.Run("invalid settings rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("discovery_mode: spicy\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
