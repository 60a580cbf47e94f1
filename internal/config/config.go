// Package config defines the user-facing settings that drive a planning
// pass: discovery mode, sampling strategy, style filters, and cache tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML settings can use strings like "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DiscoveryMode controls how adventurous recommendations should be.
type DiscoveryMode string

const (
	// ModeSimilar stays close to what the library already contains.
	ModeSimilar DiscoveryMode = "similar"

	// ModeAdjacent allows neighbouring styles.
	ModeAdjacent DiscoveryMode = "adjacent"

	// ModeExploratory prioritises novelty over familiarity.
	ModeExploratory DiscoveryMode = "exploratory"
)

// ParseDiscoveryMode maps a string to a DiscoveryMode.
func ParseDiscoveryMode(s string) (DiscoveryMode, error) {
	switch DiscoveryMode(s) {
	case ModeSimilar, ModeAdjacent, ModeExploratory:
		return DiscoveryMode(s), nil
	default:
		return "", fmt.Errorf("unknown discovery mode %q", s)
	}
}

// SamplingStrategy controls how much of the library a prompt may reference.
type SamplingStrategy string

const (
	StrategyMinimal       SamplingStrategy = "minimal"
	StrategyBalanced      SamplingStrategy = "balanced"
	StrategyComprehensive SamplingStrategy = "comprehensive"
)

// ParseSamplingStrategy maps a string to a SamplingStrategy.
func ParseSamplingStrategy(s string) (SamplingStrategy, error) {
	switch SamplingStrategy(s) {
	case StrategyMinimal, StrategyBalanced, StrategyComprehensive:
		return SamplingStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown sampling strategy %q", s)
	}
}

// Shape is a stratified sampling distribution in whole percentage points.
// The three tiers must sum to 100.
type Shape struct {
	Top    int `yaml:"top"`
	Recent int `yaml:"recent"`
	Random int `yaml:"random"`
}

// Valid reports whether the shape is a usable distribution.
func (s Shape) Valid() bool {
	return s.Top >= 0 && s.Recent >= 0 && s.Random >= 0 &&
		s.Top+s.Recent+s.Random == 100
}

// Identity returns the stable string used in fingerprints and cache keys.
func (s Shape) Identity() string {
	return fmt.Sprintf("top%d-recent%d-random%d", s.Top, s.Recent, s.Random)
}

// ShapeFor returns the default distribution for a discovery mode.
func ShapeFor(mode DiscoveryMode) Shape {
	switch mode {
	case ModeAdjacent:
		return Shape{Top: 40, Recent: 30, Random: 30}
	case ModeExploratory:
		return Shape{Top: 25, Recent: 35, Random: 40}
	default:
		return Shape{Top: 50, Recent: 30, Random: 20}
	}
}

// Settings is the full configuration for one planning pass.
type Settings struct {
	DiscoveryMode    DiscoveryMode    `yaml:"discovery_mode"`
	SamplingStrategy SamplingStrategy `yaml:"sampling_strategy"`

	// StyleFilters are raw user-supplied style names; they are resolved to
	// canonical slugs through the style catalog.
	StyleFilters []string `yaml:"style_filters"`

	// MaxSelectedStyles caps the resolved selection; overflow is trimmed by
	// coverage and recorded for auditing.
	MaxSelectedStyles int `yaml:"max_selected_styles"`

	// RelaxStyleMatching also accepts sufficiently similar adjacent styles.
	RelaxStyleMatching bool `yaml:"relax_style_matching"`

	MaxRecommendations int `yaml:"max_recommendations"`

	// RecommendArtists switches between artist and album recommendations.
	RecommendArtists bool `yaml:"recommend_artists"`

	ModelKey      string `yaml:"model_key"`
	ContextWindow int    `yaml:"context_window"`
	TargetTokens  int    `yaml:"target_tokens"`

	// SamplingShape overrides the mode's default tier distribution.
	SamplingShape *Shape `yaml:"sampling_shape,omitempty"`

	CacheCapacity int      `yaml:"cache_capacity"`
	CacheTTL      Duration `yaml:"cache_ttl"`
}

// Defaults returns settings matching the shipped defaults.
func Defaults() *Settings {
	return &Settings{
		DiscoveryMode:      ModeAdjacent,
		SamplingStrategy:   StrategyBalanced,
		MaxSelectedStyles:  10,
		MaxRecommendations: 20,
		RecommendArtists:   true,
		ModelKey:           "default",
		ContextWindow:      32768,
		TargetTokens:       2000,
		CacheCapacity:      128,
		CacheTTL:           Duration(10 * time.Minute),
	}
}

// EffectiveShape returns the override shape if set and valid, otherwise the
// mode default.
func (s *Settings) EffectiveShape(mode DiscoveryMode) Shape {
	if s.SamplingShape != nil && s.SamplingShape.Valid() {
		return *s.SamplingShape
	}
	return ShapeFor(mode)
}

// Validate rejects settings a planning pass cannot work with.
func (s *Settings) Validate() error {
	if _, err := ParseDiscoveryMode(string(s.DiscoveryMode)); err != nil {
		return err
	}
	if _, err := ParseSamplingStrategy(string(s.SamplingStrategy)); err != nil {
		return err
	}
	if s.MaxSelectedStyles <= 0 {
		return fmt.Errorf("max_selected_styles must be positive, got %d", s.MaxSelectedStyles)
	}
	if s.MaxRecommendations <= 0 {
		return fmt.Errorf("max_recommendations must be positive, got %d", s.MaxRecommendations)
	}
	if s.TargetTokens <= 0 {
		return fmt.Errorf("target_tokens must be positive, got %d", s.TargetTokens)
	}
	if s.ContextWindow < s.TargetTokens {
		return fmt.Errorf("context_window %d is smaller than target_tokens %d", s.ContextWindow, s.TargetTokens)
	}
	if s.SamplingShape != nil && !s.SamplingShape.Valid() {
		return fmt.Errorf("sampling_shape tiers must be non-negative and sum to 100")
	}
	return nil
}

// Load reads settings from a YAML file, starting from Defaults so partial
// files are usable.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	s := Defaults()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
