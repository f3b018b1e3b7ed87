package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gosom/scrapemate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanlist/van-builder-scraper/geocode"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type memRepo struct {
	mu      sync.Mutex
	records map[string]vanscrape.BuilderRecord
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[string]vanscrape.BuilderRecord{}}
}

func (m *memRepo) key(name, state string) string {
	return name + "|" + state
}

func (m *memRepo) Upsert(_ context.Context, record *vanscrape.BuilderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[m.key(record.Name, record.State)] = *record

	return nil
}

func (m *memRepo) Get(_ context.Context, name, state string) (vanscrape.BuilderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[m.key(name, state)]
	if !ok {
		return vanscrape.BuilderRecord{}, ErrNotFound
	}

	return r, nil
}

func (m *memRepo) Select(context.Context, SelectParams) ([]vanscrape.BuilderRecord, error) {
	return nil, nil
}

func (m *memRepo) DeleteByState(context.Context, string) error {
	return nil
}

func (m *memRepo) UpdateFields(context.Context, string, string, map[string]any) error {
	return nil
}

func (m *memRepo) Close() error {
	return nil
}

type staticGeocoder struct {
	pt geocode.Point
}

func (s staticGeocoder) Geocode(context.Context, string, string, string, string) geocode.Point {
	return s.pt
}

func runWriter(t *testing.T, w scrapemate.ResultWriter, records ...*vanscrape.BuilderRecord) {
	t.Helper()

	in := make(chan scrapemate.Result, len(records))
	for _, r := range records {
		in <- scrapemate.Result{Data: r}
	}

	close(in)

	require.NoError(t, w.Run(context.Background(), in))
}

func TestResultWriter_GeocodesNormalizesAndPersists(t *testing.T) {
	repo := newMemRepo()
	geo := staticGeocoder{pt: geocode.Point{Lat: 30.2672, Lng: -97.7431, Source: geocode.SourceCityTable}}

	w := NewResultWriter(repo, geo)

	runWriter(t, w, &vanscrape.BuilderRecord{
		Name:  " Acme Van Co ",
		City:  "Austin",
		State: "Texas",
		Phone: "5125551234",
	})

	got, err := repo.Get(context.Background(), "Acme Van Co", "Texas")
	require.NoError(t, err)

	assert.Equal(t, "(512) 555-1234", got.Phone)
	assert.InDelta(t, 30.2672, got.Latitude, 0.0001)
	assert.InDelta(t, -97.7431, got.Longitude, 0.0001)
}

func TestResultWriter_KeepsExistingCoordinates(t *testing.T) {
	repo := newMemRepo()
	geo := staticGeocoder{pt: geocode.Point{Lat: 1, Lng: 1, Source: geocode.SourceStateDefault}}

	w := NewResultWriter(repo, geo)

	runWriter(t, w, &vanscrape.BuilderRecord{
		Name:      "Acme Van Co",
		State:     "Texas",
		Latitude:  30.2672,
		Longitude: -97.7431,
	})

	got, err := repo.Get(context.Background(), "Acme Van Co", "Texas")
	require.NoError(t, err)

	assert.InDelta(t, 30.2672, got.Latitude, 0.0001)
}

func TestResultWriter_DropsInvalidRecords(t *testing.T) {
	repo := newMemRepo()

	w := NewResultWriter(repo, staticGeocoder{})

	runWriter(t, w,
		&vanscrape.BuilderRecord{State: "Texas"},
		&vanscrape.BuilderRecord{Name: "Good Vans", State: "Texas"},
	)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.records, 1)
}

func TestResultWriter_IgnoresForeignResults(t *testing.T) {
	repo := newMemRepo()

	w := NewResultWriter(repo, staticGeocoder{})

	in := make(chan scrapemate.Result, 1)
	in <- scrapemate.Result{Data: "not a record"}

	close(in)

	require.NoError(t, w.Run(context.Background(), in))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.records)
}

func TestResultWriter_WritesSnapshot(t *testing.T) {
	repo := newMemRepo()
	dir := t.TempDir()

	w := NewResultWriter(repo, staticGeocoder{}, WithSnapshotDir(dir, "Texas"))

	runWriter(t, w, &vanscrape.BuilderRecord{Name: "Acme Van Co", State: "Texas"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "snapshot_texas_"), "got %q", name)
	assert.True(t, strings.HasSuffix(name, ".json"))

	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var records []vanscrape.BuilderRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Van Co", records[0].Name)
}

func TestResultWriter_NoSnapshotWhenNothingAccepted(t *testing.T) {
	repo := newMemRepo()
	dir := t.TempDir()

	w := NewResultWriter(repo, staticGeocoder{}, WithSnapshotDir(dir, "Texas"))

	runWriter(t, w)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type memUploader struct {
	mu     sync.Mutex
	bucket string
	key    string
	body   []byte
}

func (u *memUploader) Upload(_ context.Context, bucketName, key string, body io.Reader) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.bucket = bucketName
	u.key = key

	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	u.body = raw

	return nil
}

func TestResultWriter_UploadsSnapshot(t *testing.T) {
	repo := newMemRepo()
	dir := t.TempDir()
	up := &memUploader{}

	w := NewResultWriter(repo, staticGeocoder{},
		WithSnapshotDir(dir, "Texas"),
		WithUploader(up, "van-snapshots"),
	)

	runWriter(t, w, &vanscrape.BuilderRecord{Name: "Acme Van Co", State: "Texas"})

	up.mu.Lock()
	defer up.mu.Unlock()

	assert.Equal(t, "van-snapshots", up.bucket)
	assert.True(t, strings.HasPrefix(up.key, "snapshot_texas_"))
	assert.NotEmpty(t, up.body)
}
