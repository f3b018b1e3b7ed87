package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vanlist/van-builder-scraper/vanscrape"
)

// TargetStates resolves the run's target states from the -states flag
// or the input file, canonicalized to full state names.
func TargetStates(cfg *Config) ([]string, error) {
	raw := cfg.States

	if len(raw) == 0 && cfg.InputFile != "" {
		var err error

		raw, err = readStates(cfg.InputFile)
		if err != nil {
			return nil, err
		}
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("no target states: use -states or -input")
	}

	states := make([]string, 0, len(raw))

	for _, s := range raw {
		canonical := vanscrape.CanonicalState(s)
		if !vanscrape.IsState(canonical) {
			return nil, fmt.Errorf("unknown state: %q", s)
		}

		states = append(states, canonical)
	}

	return states, nil
}

func readStates(path string) ([]string, error) {
	var r io.ReadCloser

	switch path {
	case "stdin":
		r = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		r = f
		defer f.Close()
	}

	var states []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		states = append(states, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return states, nil
}
