// Package webrunner serves the directory read API.
package webrunner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanlist/van-builder-scraper/runner"
	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/storage/postgres"
	"github.com/vanlist/van-builder-scraper/storage/sqlite"
	"github.com/vanlist/van-builder-scraper/web"
)

type webrunner struct {
	srv  *web.Server
	repo storage.Repository
	cfg  *runner.Config
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeWeb {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	if cfg.DataFolder == "" {
		return nil, fmt.Errorf("data folder is required")
	}

	if err := os.MkdirAll(cfg.DataFolder, 0o755); err != nil {
		return nil, err
	}

	var repo storage.Repository

	var err error

	if cfg.DatabaseURL != "" {
		log.Printf("serving from PostgreSQL (DATABASE_URL found)")

		repo, err = postgres.New(cfg.DatabaseURL)
	} else {
		repo, err = sqlite.New(filepath.Join(cfg.DataFolder, "builders.db"))
	}

	if err != nil {
		return nil, err
	}

	srv := web.New(web.NewService(repo), cfg.Addr)

	return &webrunner{
		srv:  srv,
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (w *webrunner) Run(ctx context.Context) error {
	egroup, ctx := errgroup.WithContext(ctx)

	egroup.Go(func() error {
		return w.srv.Start(ctx)
	})

	return egroup.Wait()
}

func (w *webrunner) Close(context.Context) error {
	if w.repo != nil {
		return w.repo.Close()
	}

	return nil
}
