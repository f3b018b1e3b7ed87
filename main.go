package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/playwright-community/playwright-go"

	"github.com/vanlist/van-builder-scraper/runner"
	"github.com/vanlist/van-builder-scraper/runner/patchrunner"
	"github.com/vanlist/van-builder-scraper/runner/scraperunner"
	"github.com/vanlist/van-builder-scraper/runner/webrunner"
)

func main() {
	cfg := runner.ParseConfig()

	if cfg.RunMode == runner.RunModeInstallPlaywright {
		if err := installPlaywright(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		return
	}

	runner.Banner()

	r, err := runnerFactory(cfg)
	if err != nil {
		// Setup errors (missing API key, unreadable input) are the only
		// fatal class; per-record failures never reach here.
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runErr := r.Run(ctx)

	if err := r.Close(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}

	_ = runner.Telemetry().Close()
}

func runnerFactory(cfg *runner.Config) (runner.Runner, error) {
	switch cfg.RunMode {
	case runner.RunModeScrape:
		return scraperunner.New(cfg)
	case runner.RunModePatch:
		return patchrunner.New(cfg)
	case runner.RunModeWeb:
		return webrunner.New(cfg)
	default:
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}
}

func installPlaywright() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}
