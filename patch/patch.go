// Package patch applies named, versioned sets of field-level
// corrections to builder records. It replaces the old habit of writing
// one ad-hoc fix script per state: a patch set is data, the
// reconciliation routine is generic.
package patch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/vanlist/van-builder-scraper/storage"
)

// Patch targets one record by its natural key and assigns the listed
// columns. Only the listed columns change.
type Patch struct {
	Name   string         `json:"name"`
	State  string         `json:"state"`
	Fields map[string]any `json:"fields"`
	Note   string         `json:"note,omitempty"`
}

// Set is a named collection of patches, typically one file per cleanup
// campaign.
type Set struct {
	Name    string  `json:"name"`
	Version int     `json:"version"`
	Patches []Patch `json:"patches"`
}

// Load reads a patch set from a JSON file.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch set: %w", err)
	}

	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse patch set: %w", err)
	}

	if set.Name == "" {
		return nil, fmt.Errorf("patch set has no name")
	}

	return &set, nil
}

// Result summarizes one reconciliation run.
type Result struct {
	Applied int
	Missing int
	Failed  int
}

// Apply runs every patch in the set against the repository. A missing
// or failing record is logged and counted; the set continues.
func Apply(ctx context.Context, repo storage.Repository, set *Set) Result {
	var res Result

	log.Printf("applying patch set %q v%d (%d patches)", set.Name, set.Version, len(set.Patches))

	for _, p := range set.Patches {
		err := repo.UpdateFields(ctx, p.Name, p.State, p.Fields)

		switch {
		case err == nil:
			res.Applied++

			log.Printf("patched %q (%s): %d fields", p.Name, p.State, len(p.Fields))
		case err == storage.ErrNotFound:
			res.Missing++

			log.Printf("patch target missing: %q (%s)", p.Name, p.State)
		default:
			res.Failed++

			log.Printf("patch failed for %q (%s): %v", p.Name, p.State, err)
		}
	}

	log.Printf("patch set %q done: %d applied, %d missing, %d failed",
		set.Name, res.Applied, res.Missing, res.Failed)

	return res
}
