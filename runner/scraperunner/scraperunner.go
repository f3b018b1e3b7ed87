// Package scraperunner drives the per-state pipeline: search for
// candidates, visit and verify each page, then validate, geocode and
// persist what survives.
package scraperunner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gosom/scrapemate"
	"github.com/gosom/scrapemate/scrapemateapp"

	"github.com/vanlist/van-builder-scraper/deduper"
	"github.com/vanlist/van-builder-scraper/exiter"
	"github.com/vanlist/van-builder-scraper/geocode"
	"github.com/vanlist/van-builder-scraper/runner"
	"github.com/vanlist/van-builder-scraper/search"
	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/storage/postgres"
	"github.com/vanlist/van-builder-scraper/storage/sqlite"
	"github.com/vanlist/van-builder-scraper/tlmt"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type scrapeRunner struct {
	cfg      *runner.Config
	repo     storage.Repository
	searcher *search.Client
	geocoder *geocode.Geocoder

	screenshotDir string
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeScrape {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	if cfg.SearchAPIKey == "" {
		return nil, fmt.Errorf("SEARCH_API_KEY is required")
	}

	if err := os.MkdirAll(cfg.DataFolder, 0o755); err != nil {
		return nil, err
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	screenshotDir, err := os.MkdirTemp("", "vanscrape-shots-")
	if err != nil {
		repo.Close()

		return nil, err
	}

	ans := &scrapeRunner{
		cfg:           cfg,
		repo:          repo,
		searcher:      search.NewClient(cfg.SearchAPIKey),
		geocoder:      geocode.New(cfg.GeocodeAPIKey),
		screenshotDir: screenshotDir,
	}

	return ans, nil
}

func openRepository(cfg *runner.Config) (storage.Repository, error) {
	if cfg.DatabaseURL != "" {
		log.Printf("using PostgreSQL (DATABASE_URL found)")

		return postgres.New(cfg.DatabaseURL)
	}

	return sqlite.New(filepath.Join(cfg.DataFolder, "builders.db"))
}

func (r *scrapeRunner) Run(ctx context.Context) (err error) {
	states, err := runner.TargetStates(r.cfg)
	if err != nil {
		return err
	}

	t0 := time.Now().UTC()

	defer func() {
		params := map[string]any{
			"states":   len(states),
			"duration": time.Now().UTC().Sub(t0).String(),
		}

		if err != nil {
			params["error"] = err.Error()
		}

		_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("scrape_runner", params))
	}()

	for _, state := range states {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.runState(ctx, state); err != nil {
			// One state failing does not abort the rest of the batch.
			log.Printf("state %s failed: %v", state, err)
		}
	}

	return nil
}

func (r *scrapeRunner) runState(ctx context.Context, state string) error {
	log.Printf("scraping state: %s", state)

	if r.cfg.FreshImport {
		if err := r.repo.DeleteByState(ctx, state); err != nil {
			return fmt.Errorf("fresh import cleanup: %w", err)
		}
	}

	dedup := deduper.New()
	exitMonitor := exiter.New()

	jobs := r.seedJobs(ctx, state, dedup, exitMonitor)
	if len(jobs) == 0 {
		log.Printf("no candidates found for %s", state)

		return nil
	}

	log.Printf("%d candidates for %s", len(jobs), state)

	writerOpts := []storage.WriterOption{
		storage.WithSnapshotDir(filepath.Join(r.cfg.DataFolder, "snapshots"), state),
	}

	if r.cfg.S3Uploader != nil && r.cfg.S3Bucket != "" {
		writerOpts = append(writerOpts, storage.WithUploader(r.cfg.S3Uploader, r.cfg.S3Bucket))
	}

	writer := storage.NewResultWriter(r.repo, r.geocoder, writerOpts...)

	app, err := r.newApp(writer)
	if err != nil {
		return err
	}

	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("browser teardown: %v", err)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exitMonitor.SetCandidateCount(len(jobs))
	exitMonitor.SetCancelFunc(cancel)

	go exitMonitor.Run(runCtx)

	err = app.Start(runCtx, jobs...)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// seedJobs runs the state's query set and turns deduplicated search
// hits into page-visit jobs.
func (r *scrapeRunner) seedJobs(ctx context.Context, state string, dedup deduper.Deduper, exitMonitor exiter.Exiter) []scrapemate.IJob {
	var jobs []scrapemate.IJob

	for _, query := range search.StateQueries(state) {
		results := r.searcher.Search(ctx, query)
		log.Printf("query %q: %d results", query, len(results))

		for _, res := range results {
			if res.URL == "" || !dedup.AddIfNotExists(ctx, res.URL) {
				continue
			}

			opts := []vanscrape.BuilderJobOptions{
				vanscrape.WithScreenshotDir(r.screenshotDir),
				vanscrape.WithBuilderJobExitMonitor(exitMonitor),
			}

			if r.cfg.LaxValidation {
				opts = append(opts, vanscrape.WithLaxValidation())
			}

			jobs = append(jobs, vanscrape.NewBuilderJob("", res.URL, res.Title, state, opts...))
		}
	}

	exitMonitor.IncrCandidatesFound(len(jobs))

	return jobs
}

func (r *scrapeRunner) newApp(writer scrapemate.ResultWriter) (*scrapemateapp.ScrapemateApp, error) {
	opts := []func(*scrapemateapp.Config) error{
		scrapemateapp.WithConcurrency(r.cfg.Concurrency),
	}

	if r.cfg.Debug {
		opts = append(opts, scrapemateapp.WithJS(
			scrapemateapp.Headfull(),
			scrapemateapp.DisableImages(),
		))
	} else {
		opts = append(opts, scrapemateapp.WithJS(scrapemateapp.DisableImages()))
	}

	matecfg, err := scrapemateapp.NewConfig(
		[]scrapemate.ResultWriter{writer},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	return scrapemateapp.NewScrapeMateApp(matecfg)
}

func (r *scrapeRunner) Close(context.Context) error {
	// Screenshot artifacts are scoped to the run.
	if r.screenshotDir != "" {
		if err := os.RemoveAll(r.screenshotDir); err != nil {
			log.Printf("screenshot cleanup: %v", err)
		}
	}

	if r.repo != nil {
		return r.repo.Close()
	}

	return nil
}
