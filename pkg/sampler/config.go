// YAML configuration types, loading, and validation for sampler definitions
// Each named sampler declares exactly one of a distribution, weights, a window or a score
package sampler

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration.
type Config struct {
	// Seed makes runs reproducible; 0 means a random seed.
	Seed     uint64          `yaml:"seed,omitempty"`
	Samplers []SamplerConfig `yaml:"-"`
}

// rawConfig mirrors Config but uses a map for samplers to match the YAML structure.
type rawConfig struct {
	Seed     uint64                   `yaml:"seed,omitempty"`
	Samplers map[string]SamplerConfig `yaml:"samplers"`
}

// SamplerConfig describes one named sampler.
type SamplerConfig struct {
	Name string `yaml:"-"`

	Distribution string `yaml:"distribution,omitempty"`
	// Unit is the display and record unit of duration distributions and windows.
	Unit string `yaml:"unit,omitempty"`

	Weights       map[string]float64 `yaml:"weights,omitempty"`
	Probabilities map[string]float64 `yaml:"probabilities,omitempty"`

	Window *WindowConfig `yaml:"window,omitempty"`

	// Score is "rating" or "zscore".
	Score string   `yaml:"score,omitempty"`
	Mu    *float64 `yaml:"mu,omitempty"`
	Sigma *float64 `yaml:"sigma,omitempty"`
}

// WindowConfig describes a span of instants. Start is RFC 3339 or "epoch";
// exactly one of End and Duration is required.
type WindowConfig struct {
	Start    string `yaml:"start"`
	End      string `yaml:"end,omitempty"`
	Duration string `yaml:"duration,omitempty"`
	Openness string `yaml:"openness,omitempty"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := &Config{Seed: raw.Seed}

	// Convert map-based samplers into ordered slice (sorted for determinism)
	names := make([]string, 0, len(raw.Samplers))
	for name := range raw.Samplers {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		sc := raw.Samplers[name]
		sc.Name = name
		cfg.Samplers = append(cfg.Samplers, sc)
	}
	return cfg, nil
}

// kinds returns the kinds a sampler config declares.
func (sc SamplerConfig) kinds() []Kind {
	var out []Kind
	if sc.Distribution != "" {
		out = append(out, KindDistribution)
	}
	if len(sc.Weights) > 0 || len(sc.Probabilities) > 0 {
		out = append(out, KindWeights)
	}
	if sc.Window != nil {
		out = append(out, KindWindow)
	}
	if sc.Score != "" {
		out = append(out, KindScore)
	}
	return out
}

// ValidateConfig checks a configuration for structural correctness by building
// every sampler it declares.
func ValidateConfig(cfg *Config) error {
	if len(cfg.Samplers) == 0 {
		return fmt.Errorf("at least one sampler is required")
	}
	_, err := Build(cfg)
	return err
}

// Build turns a configuration into samplers, in name order.
func Build(cfg *Config) ([]*Sampler, error) {
	samplers := make([]*Sampler, 0, len(cfg.Samplers))
	for _, sc := range cfg.Samplers {
		s, err := NewSampler(sc)
		if err != nil {
			return nil, fmt.Errorf("sampler %q: %w", sc.Name, err)
		}
		samplers = append(samplers, s)
	}
	return samplers, nil
}
