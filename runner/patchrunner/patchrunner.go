// Package patchrunner applies a reconciliation patch set to the store.
package patchrunner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanlist/van-builder-scraper/patch"
	"github.com/vanlist/van-builder-scraper/runner"
	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/storage/postgres"
	"github.com/vanlist/van-builder-scraper/storage/sqlite"
	"github.com/vanlist/van-builder-scraper/tlmt"
)

type patchRunner struct {
	cfg  *runner.Config
	repo storage.Repository
	set  *patch.Set
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModePatch {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	set, err := patch.Load(cfg.PatchFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataFolder, 0o755); err != nil {
		return nil, err
	}

	var repo storage.Repository

	if cfg.DatabaseURL != "" {
		repo, err = postgres.New(cfg.DatabaseURL)
	} else {
		repo, err = sqlite.New(filepath.Join(cfg.DataFolder, "builders.db"))
	}

	if err != nil {
		return nil, err
	}

	return &patchRunner{cfg: cfg, repo: repo, set: set}, nil
}

func (p *patchRunner) Run(ctx context.Context) error {
	res := patch.Apply(ctx, p.repo, p.set)

	_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("patch_runner", map[string]any{
		"set":     p.set.Name,
		"applied": res.Applied,
		"missing": res.Missing,
		"failed":  res.Failed,
	}))

	return nil
}

func (p *patchRunner) Close(context.Context) error {
	if p.repo != nil {
		return p.repo.Close()
	}

	return nil
}
