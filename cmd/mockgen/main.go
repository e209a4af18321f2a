package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"hire-oracle/cmd/mockgen/engine"
	"hire-oracle/internal/scenario"
)

func main() {
	profile := flag.String("profile", "healthy", "Pipeline to generate: healthy, thin, stalled, chaos")
	distribution := flag.String("distribution", "gamma", "Stage duration distribution: gamma, weibull")
	out := flag.String("out", "./data/scenarios/synthetic.yaml", "Output scenario file (.yaml or .json)")
	applicants := flag.Int("applicants", 200, "Number of applicants to generate")
	checkpoints := flag.Int("checkpoints", 4, "Number of backtest checkpoints")
	seed := flag.String("seed", "", "RNG seed (defaults to the profile name)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Profile:      *profile,
		Distribution: *distribution,
		Applicants:   *applicants,
		Checkpoints:  *checkpoints,
		Seed:         *seed,
		Now:          time.Now(),
	}

	fmt.Printf("Generating profile '%s' (Distribution: %s, Applicants: %d) to %s...\n", cfg.Profile, cfg.Distribution, cfg.Applicants, *out)

	f, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate scenario: %v\n", err)
		os.Exit(1)
	}
	if err := scenario.Save(*out, f); err != nil {
		fmt.Printf("Failed to save scenario: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d roster entries, %d checkpoints.\n", len(f.Candidates), len(f.Checkpoints))
}
