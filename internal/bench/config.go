package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DistributionConfig selects the generator of the key stream.
type DistributionConfig struct {
	Kind   string  `yaml:"kind"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	S      float64 `yaml:"s"`
	V      float64 `yaml:"v"`
	IMax   uint64  `yaml:"imax"`
}

// Config is the top-level configuration of a bench run.
type Config struct {
	Distribution DistributionConfig `yaml:"distribution"`
	Samples      int                `yaml:"samples"`
	Seed         uint64             `yaml:"seed"`
	K            int                `yaml:"k"`
	Epsilons     []float64          `yaml:"epsilons"`
	Gamma        float64            `yaml:"gamma"`
	Depths       []uint             `yaml:"depths"`
	Trials       int                `yaml:"trials"`
}

// DefaultConfig mirrors the benchmark the sketch was tuned with: 10^6 normally
// distributed samples, top 10, epsilon between 0.01 and 0.2.
func DefaultConfig() Config {
	return Config{
		Distribution: DistributionConfig{Kind: "normal", Mean: 10000, StdDev: 500, S: 1.2, V: 1, IMax: 1 << 16},
		Samples:      1000000,
		Seed:         1,
		K:            10,
		Epsilons:     []float64{0.01, 0.02, 0.05, 0.1, 0.2},
		Gamma:        0.01,
		Trials:       1,
	}
}

// LoadConfig reads the configuration from a YAML file. Fields absent from the file keep
// the values of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no run could be built from
func (c *Config) Validate() error {
	switch c.Distribution.Kind {
	case "normal":
		if c.Distribution.StdDev <= 0 {
			return fmt.Errorf("normal distribution needs a positive stddev, got %v", c.Distribution.StdDev)
		}
	case "zipf":
		if c.Distribution.S <= 1 || c.Distribution.V < 1 || c.Distribution.IMax == 0 {
			return fmt.Errorf("zipf distribution needs s > 1, v >= 1 and imax > 0")
		}
	default:
		return fmt.Errorf("unknown distribution %q", c.Distribution.Kind)
	}
	if c.Samples <= 0 || c.K <= 0 || c.Trials <= 0 {
		return fmt.Errorf("samples, k and trials should be positive")
	}
	if len(c.Epsilons) == 0 {
		return fmt.Errorf("at least one epsilon is needed")
	}
	return nil
}

// Histogram generates the key stream the configuration describes
func (c *Config) Histogram(seed uint64) Histogram {
	if c.Distribution.Kind == "zipf" {
		return ZipfHistogram(c.Samples, c.Distribution.S, c.Distribution.V, c.Distribution.IMax, seed)
	}
	return NormalHistogram(c.Samples, c.Distribution.Mean, c.Distribution.StdDev, seed)
}
