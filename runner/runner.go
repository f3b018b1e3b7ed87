package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanlist/van-builder-scraper/s3uploader"
	"github.com/vanlist/van-builder-scraper/tlmt"
	"github.com/vanlist/van-builder-scraper/tlmt/gonoop"
	"github.com/vanlist/van-builder-scraper/tlmt/goposthog"
)

const (
	RunModeScrape = iota + 1
	RunModePatch
	RunModeWeb
	RunModeInstallPlaywright
)

var ErrInvalidRunMode = errors.New("invalid run mode")

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type Config struct {
	Concurrency   int
	States        []string
	InputFile     string
	DataFolder    string
	Addr          string
	Debug         bool
	LaxValidation bool
	FreshImport   bool
	PatchFile     string
	WebRunner     bool
	RunMode       int

	SearchAPIKey  string
	GeocodeAPIKey string
	DatabaseURL   string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	S3Bucket     string
	S3Uploader   *s3uploader.Uploader
}

func ParseConfig() *Config {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	cfg := Config{}

	if os.Getenv("PLAYWRIGHT_INSTALL_ONLY") == "1" {
		cfg.RunMode = RunModeInstallPlaywright

		return &cfg
	}

	var states string

	flag.IntVar(&cfg.Concurrency, "c", 1, "sets the concurrency; keep at 1 for crawl politeness [default: 1]")
	flag.StringVar(&states, "states", "", "comma separated list of target states (e.g., 'Texas,Colorado')")
	flag.StringVar(&cfg.InputFile, "input", "", "path to a file with target states, one per line")
	flag.StringVar(&cfg.DataFolder, "data-folder", "data", "folder for the database and run snapshots")
	flag.StringVar(&cfg.Addr, "addr", ":8080", "address to listen on for the web server")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable headful crawl (opens browser window) [default: false]")
	flag.BoolVar(&cfg.LaxValidation, "lax-validation", false, "accept builders at the lenient validation threshold")
	flag.BoolVar(&cfg.FreshImport, "fresh", false, "delete each target state's rows before importing")
	flag.StringVar(&cfg.PatchFile, "patch", "", "apply a JSON patch set and exit")
	flag.BoolVar(&cfg.WebRunner, "web", false, "run the directory API server instead of scraping")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket for snapshot uploads")

	flag.Parse()

	if states != "" {
		for _, s := range strings.Split(states, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.States = append(cfg.States, s)
			}
		}
	}

	cfg.SearchAPIKey = os.Getenv("SEARCH_API_KEY")
	cfg.GeocodeAPIKey = os.Getenv("GEOCODING_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.AwsAccessKey = os.Getenv("MY_AWS_ACCESS_KEY")
	cfg.AwsSecretKey = os.Getenv("MY_AWS_SECRET_KEY")
	cfg.AwsRegion = os.Getenv("MY_AWS_REGION")

	if cfg.Concurrency < 1 {
		panic("Concurrency must be greater than 0")
	}

	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" && cfg.AwsRegion != "" {
		cfg.S3Uploader = s3uploader.New(cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion)
	}

	switch {
	case cfg.PatchFile != "":
		cfg.RunMode = RunModePatch
	case cfg.WebRunner:
		cfg.RunMode = RunModeWeb
	default:
		cfg.RunMode = RunModeScrape
	}

	return &cfg
}

var (
	telemetryOnce sync.Once
	telemetry     tlmt.Telemetry
)

func Telemetry() tlmt.Telemetry {
	telemetryOnce.Do(func() {
		if os.Getenv("DISABLE_TELEMETRY") == "1" {
			telemetry = gonoop.New()

			return
		}

		val, err := goposthog.New(os.Getenv("POSTHOG_API_KEY"), "https://eu.i.posthog.com")
		if err != nil || val == nil {
			telemetry = gonoop.New()

			return
		}

		telemetry = val
	})

	return telemetry
}

// Banner prints the startup notice, wrapped to the terminal width.
func Banner() {
	messages := []string{
		"van-builder-scraper: camper van conversion builder directory pipeline",
		"telemetry is anonymous and opt-out: set DISABLE_TELEMETRY=1 to disable",
	}

	fmt.Fprintln(os.Stderr, banner(messages, 0))
}

func wrapText(text string, width int) []string {
	var lines []string

	currentLine := ""
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			lines = append(lines, currentLine)
			currentLine = string(r)
			currentWidth = runeWidth
		} else {
			currentLine += string(r)
			currentWidth += runeWidth
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func banner(messages []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(0)
		if err != nil {
			width = 80
		}
	}

	if width < 20 {
		width = 20
	}

	inner := width - 4

	var b strings.Builder

	b.WriteString("+" + strings.Repeat("-", width-2) + "+\n")

	for _, msg := range messages {
		for _, line := range wrapText(msg, inner) {
			pad := inner - runewidth.StringWidth(line)
			if pad < 0 {
				pad = 0
			}

			b.WriteString("| " + line + strings.Repeat(" ", pad) + " |\n")
		}
	}

	b.WriteString("+" + strings.Repeat("-", width-2) + "+")

	return b.String()
}
