package main

import (
	"context"
	"flag"
	"os"

	"github.com/alicebob/miniredis/v2"
	log "github.com/golang/glog"
	"github.com/kwertop/freqsketch"
	"github.com/kwertop/freqsketch/internal/bench"
)

var (
	configPath = flag.String("config", "", "path of the YAML bench config, defaults are used when empty")
	redisURI   = flag.String("redis", "", "redis uri to compare the shared sketch against, or \"mock\" for an in-process server")
	combined   = flag.Bool("combined", false, "ingest depth runs through update-and-estimate")
)

func loadConfig() *bench.Config {
	if *configPath == "" {
		cfg := bench.DefaultConfig()
		return &cfg
	}
	cfg, err := bench.LoadConfig(*configPath)
	if err != nil {
		log.Exitf("cannot load config %s: %v", *configPath, err)
	}
	return cfg
}

func connectRedis() {
	uri := *redisURI
	if uri == "mock" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Exitf("cannot start in-process redis: %v", err)
		}
		uri = "redis://" + mr.Addr()
	}
	options, err := freqsketch.ParseRedisURI(uri)
	if err != nil {
		log.Exitf("invalid redis uri: %v", err)
	}
	if err := freqsketch.MakeRedisClient(*options); err != nil {
		log.Exitf("cannot create redis client: %v", err)
	}
	log.Infof("comparing against redis at %s", options.Address)
}

func main() {
	flag.Parse()
	defer log.Flush()

	cfg := loadConfig()
	log.Infof("distribution: %s, samples: %d, k: %d, trials: %d", cfg.Distribution.Kind, cfg.Samples, cfg.K, cfg.Trials)
	if *redisURI != "" {
		connectRedis()
	}

	failed := false
	for trial := 0; trial < cfg.Trials; trial++ {
		seed := cfg.Seed + uint64(trial)
		hist := cfg.Histogram(seed)
		log.Infof("trial %d: %d samples over %d keys", trial, hist.Total(), len(hist))

		for _, epsilon := range cfg.Epsilons {
			result, err := bench.RunInvariant(hist, epsilon, cfg.Gamma, cfg.K, seed)
			if err != nil {
				log.Errorf("run with epsilon %v failed: %v", epsilon, err)
				failed = true
				continue
			}
			if result.Passed() {
				log.Infof("%v", result)
			} else {
				log.Warningf("top-%d guarantee violated: %v", cfg.K, result)
				failed = true
			}

			for _, depth := range cfg.Depths {
				result, err := bench.RunDepth(hist, epsilon, depth, cfg.K, seed, *combined)
				if err != nil {
					log.Errorf("run with epsilon %v, depth %d failed: %v", epsilon, depth, err)
					failed = true
					continue
				}
				log.Infof("%v", result)
			}

			if *redisURI != "" {
				mismatches, err := bench.CompareRedis(context.Background(), hist, epsilon, cfg.Gamma, seed)
				if err != nil {
					log.Errorf("redis comparison with epsilon %v failed: %v", epsilon, err)
					failed = true
				} else if mismatches > 0 {
					log.Errorf("redis sketch disagrees with the in-memory sketch on %d of %d keys", mismatches, len(hist))
					failed = true
				} else {
					log.Infof("redis sketch agrees with the in-memory sketch on all %d keys", len(hist))
				}
			}
		}
	}
	if failed {
		log.Flush()
		os.Exit(1)
	}
}
