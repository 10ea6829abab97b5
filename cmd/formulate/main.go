// Command formulate is a JSON-in/JSON-out CLI over the ration engine: it
// reads an animal profile and feed catalog, runs C2-C9, and prints the
// resulting DietResult. With --tui it renders the same result interactively
// instead of printing JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"ration/internal/domain"
	"ration/internal/engine"
)

// request is the CLI's JSON input shape: one animal, its feed catalog, and
// which mode to run.
type request struct {
	Animal domain.AnimalInputs `json:"animal"`
	Feeds  []domain.FeedRow    `json:"feeds"`
	Mode   domain.Mode         `json:"mode"`
}

func main() {
	inputPath := flag.String("input", "-", "path to the request JSON, or \"-\" for stdin")
	mode := flag.String("mode", "", "override the request's mode: Recommend or Evaluate")
	tui := flag.Bool("tui", false, "render the result interactively instead of printing JSON")
	generations := flag.Int("generations", 0, "override the optimizer's generation count (0 keeps the default)")
	population := flag.Int("population", 0, "override the optimizer's population size (0 keeps the default)")
	seed := flag.Int64("seed", 0, "override the optimizer's random seed (0 keeps the default)")
	flag.Parse()

	req, err := readRequest(*inputPath)
	if err != nil {
		log.Fatalf("failed to read request: %v", err)
	}

	runMode := req.Mode
	if *mode != "" {
		runMode = domain.Mode(*mode)
	}
	if runMode == "" {
		runMode = domain.ModeRecommend
	}

	cfg := engine.DefaultConfig()
	if *generations > 0 {
		cfg.Generations = *generations
	}
	if *population > 0 {
		cfg.PopulationSize = *population
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	result, err := engine.Run(context.Background(), req.Animal, req.Feeds, runMode, cfg)
	if err != nil {
		log.Fatalf("formulate failed: %v", err)
	}

	if *tui {
		if err := runTUI(result); err != nil {
			log.Fatalf("tui failed: %v", err)
		}
		return
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
}

func readRequest(path string) (request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return request{}, err
		}
		defer f.Close()
		r = f
	}

	var req request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return request{}, fmt.Errorf("invalid request JSON: %w", err)
	}
	return req, nil
}
