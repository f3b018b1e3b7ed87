package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gosom/scrapemate"

	"github.com/vanlist/van-builder-scraper/geocode"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

// Geocoder is what the writer needs from the geocode package; narrowed
// to an interface so tests can substitute a static resolver.
type Geocoder interface {
	Geocode(ctx context.Context, address, city, state, name string) geocode.Point
}

// SnapshotUploader optionally ships the run snapshot off-box.
type SnapshotUploader interface {
	Upload(ctx context.Context, bucketName, key string, body io.Reader) error
}

type resultWriter struct {
	repo     Repository
	geocoder Geocoder

	snapshotDir   string
	snapshotLabel string
	uploader      SnapshotUploader
	bucket        string

	mu       sync.Mutex
	accepted []*vanscrape.BuilderRecord
}

type WriterOption func(*resultWriter)

// WithSnapshotDir enables the JSON audit snapshot. The label (usually
// the target state) becomes part of the file name.
func WithSnapshotDir(dir, label string) WriterOption {
	return func(w *resultWriter) {
		w.snapshotDir = dir
		w.snapshotLabel = label
	}
}

func WithUploader(uploader SnapshotUploader, bucket string) WriterOption {
	return func(w *resultWriter) {
		w.uploader = uploader
		w.bucket = bucket
	}
}

// NewResultWriter builds the terminal pipeline stage: geocode when
// needed, normalize, upsert into the authoritative store, and record
// the run's accepted records for the snapshot audit trail.
func NewResultWriter(repo Repository, geocoder Geocoder, opts ...WriterOption) scrapemate.ResultWriter {
	ans := &resultWriter{
		repo:     repo,
		geocoder: geocoder,
	}

	for _, opt := range opts {
		opt(ans)
	}

	return ans
}

func (w *resultWriter) Run(ctx context.Context, in <-chan scrapemate.Result) error {
	for result := range in {
		record, ok := result.Data.(*vanscrape.BuilderRecord)
		if !ok {
			continue
		}

		if err := w.persist(ctx, record); err != nil {
			// A failed record is dropped; the batch continues.
			log.Printf("failed to persist %q (%s): %v", record.Name, record.State, err)

			continue
		}

		w.mu.Lock()
		w.accepted = append(w.accepted, record)
		w.mu.Unlock()
	}

	// The run context is usually canceled by the exit monitor at this
	// point; the snapshot still has to land.
	return w.writeSnapshot(context.Background())
}

func (w *resultWriter) persist(ctx context.Context, record *vanscrape.BuilderRecord) error {
	if !record.Geocoded() && w.geocoder != nil {
		pt := w.geocoder.Geocode(ctx, record.Address, record.City, record.State, record.Name)
		record.Latitude = pt.Lat
		record.Longitude = pt.Lng
	}

	record.Normalize()

	if err := record.Validate(); err != nil {
		return err
	}

	return w.repo.Upsert(ctx, record)
}

// writeSnapshot dumps the accepted records of this run to a timestamped
// JSON file and optionally uploads it.
func (w *resultWriter) writeSnapshot(ctx context.Context) error {
	if w.snapshotDir == "" {
		return nil
	}

	w.mu.Lock()
	accepted := w.accepted
	w.mu.Unlock()

	if len(accepted) == 0 {
		return nil
	}

	if err := os.MkdirAll(w.snapshotDir, 0o755); err != nil {
		return err
	}

	label := strings.ReplaceAll(strings.ToLower(w.snapshotLabel), " ", "_")
	if label == "" {
		label = "run"
	}

	name := fmt.Sprintf("snapshot_%s_%s.json", label, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(w.snapshotDir, name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(accepted); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote snapshot %s (%d records)", path, len(accepted))

	if w.uploader != nil && w.bucket != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := w.uploader.Upload(ctx, w.bucket, name, f); err != nil {
			log.Printf("snapshot upload failed: %v", err)
		}
	}

	return nil
}
