package bench

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
distribution:
  kind: zipf
  s: 1.5
  imax: 1000
samples: 5000
epsilons: [0.05, 0.1]
depths: [4, 8]
`))
	if err != nil {
		t.Fatalf("config should parse, error: %v", err)
	}
	if cfg.Distribution.Kind != "zipf" || cfg.Distribution.S != 1.5 || cfg.Distribution.IMax != 1000 {
		t.Errorf("distribution should be zipf(1.5) over 1000 keys, found %+v", cfg.Distribution)
	}
	if cfg.Distribution.V != 1 {
		t.Errorf("zipf v should keep its default 1, found %v", cfg.Distribution.V)
	}
	if cfg.Samples != 5000 || len(cfg.Epsilons) != 2 || len(cfg.Depths) != 2 {
		t.Errorf("samples, epsilons and depths should come from the file, found %+v", cfg)
	}
	if cfg.K != 10 || cfg.Gamma != 0.01 || cfg.Trials != 1 {
		t.Errorf("k, gamma and trials should keep their defaults, found %d %v %d", cfg.K, cfg.Gamma, cfg.Trials)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	for _, doc := range []string{
		"distribution: {kind: uniform}",
		"distribution: {kind: zipf, s: 1}",
		"distribution: {kind: normal, stddev: 0}",
		"samples: 0",
		"k: -1",
		"epsilons: []",
		"samples: [1",
	} {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("config %q should be rejected", doc)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte("samples: 1234\nseed: 7\n"), 0o644); err != nil {
		t.Fatalf("writing config should succeed, error: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("config should load, error: %v", err)
	}
	if cfg.Samples != 1234 || cfg.Seed != 7 || cfg.Distribution.Kind != "normal" {
		t.Errorf("config should hold the file values over the defaults, found %+v", cfg)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing config file should fail")
	}
}
