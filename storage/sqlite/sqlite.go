package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type repo struct {
	db *sql.DB
}

func New(path string) (storage.Repository, error) {
	db, err := initDatabase(path)
	if err != nil {
		return nil, err
	}

	return &repo{db: db}, nil
}

func NewWithDB(db *sql.DB) storage.Repository {
	return &repo{db: db}
}

func InitDB(path string) (*sql.DB, error) {
	return initDatabase(path)
}

func initDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single writer; avoids SQLITE_BUSY under the concurrent web reader.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS builders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		city TEXT DEFAULT '',
		state TEXT NOT NULL,
		lat REAL DEFAULT 0,
		lng REAL DEFAULT 0,
		zip TEXT DEFAULT '',
		phone TEXT DEFAULT '',
		email TEXT DEFAULT '',
		website TEXT DEFAULT '',
		description TEXT DEFAULT '',
		van_types TEXT DEFAULT '[]',
		amenities TEXT DEFAULT '[]',
		services TEXT DEFAULT '[]',
		social_media TEXT DEFAULT '{}',
		photos TEXT DEFAULT '[]',
		address TEXT DEFAULT '',
		verified INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, state)
	);
	CREATE INDEX IF NOT EXISTS idx_builders_state ON builders(state);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

const selectColumns = `name, city, state, lat, lng, zip, phone, email, website,
	description, van_types, amenities, services, social_media, photos, address, verified`

func (r *repo) Get(ctx context.Context, name, state string) (vanscrape.BuilderRecord, error) {
	const q = `SELECT ` + selectColumns + ` FROM builders WHERE name = ? AND state = ?`

	row := r.db.QueryRowContext(ctx, q, name, state)

	return rowToRecord(row)
}

func (r *repo) Upsert(ctx context.Context, record *vanscrape.BuilderRecord) error {
	existing, err := r.Get(ctx, record.Name, record.State)

	switch {
	case err == nil:
		merged := mergeRecords(&existing, record)

		return r.update(ctx, merged)
	case err == storage.ErrNotFound:
		return r.insert(ctx, record)
	default:
		return err
	}
}

func (r *repo) insert(ctx context.Context, record *vanscrape.BuilderRecord) error {
	vanTypes, amenities, services, socialMedia, photos, err := record.MarshalLists()
	if err != nil {
		return err
	}

	const q = `INSERT INTO builders
		(name, city, state, lat, lng, zip, phone, email, website, description,
		 van_types, amenities, services, social_media, photos, address, verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, q,
		record.Name, record.City, record.State, record.Latitude, record.Longitude,
		record.Zip, record.Phone, record.Email, record.Website, record.Description,
		vanTypes, amenities, services, socialMedia, photos, record.Address,
		record.Verified, now, now,
	)

	return err
}

func (r *repo) update(ctx context.Context, record *vanscrape.BuilderRecord) error {
	vanTypes, amenities, services, socialMedia, photos, err := record.MarshalLists()
	if err != nil {
		return err
	}

	const q = `UPDATE builders SET
		city = ?, lat = ?, lng = ?, zip = ?, phone = ?, email = ?, website = ?,
		description = ?, van_types = ?, amenities = ?, services = ?, social_media = ?,
		photos = ?, address = ?, verified = ?, updated_at = ?
		WHERE name = ? AND state = ?`

	_, err = r.db.ExecContext(ctx, q,
		record.City, record.Latitude, record.Longitude, record.Zip, record.Phone,
		record.Email, record.Website, record.Description, vanTypes, amenities,
		services, socialMedia, photos, record.Address, record.Verified,
		time.Now().UTC(), record.Name, record.State,
	)

	return err
}

func (r *repo) Select(ctx context.Context, params storage.SelectParams) ([]vanscrape.BuilderRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM builders`

	var args []any

	var conditions []string

	if params.State != "" {
		conditions = append(conditions, "LOWER(state) = LOWER(?)")
		args = append(args, params.State)
	}

	if params.Query != "" {
		conditions = append(conditions,
			"(LOWER(name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(description) LIKE ?)")

		like := "%" + strings.ToLower(params.Query) + "%"
		args = append(args, like, like, like)
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}

	q += " ORDER BY state, name"

	if params.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, params.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ans []vanscrape.BuilderRecord

	for rows.Next() {
		record, err := rowToRecord(rows)
		if err != nil {
			return nil, err
		}

		ans = append(ans, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ans, nil
}

func (r *repo) DeleteByState(ctx context.Context, state string) error {
	const q = `DELETE FROM builders WHERE LOWER(state) = LOWER(?)`

	_, err := r.db.ExecContext(ctx, q, state)

	return err
}

func (r *repo) UpdateFields(ctx context.Context, name, state string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var assignments []string

	var args []any

	for col, val := range fields {
		if _, ok := storage.PatchableColumns[col]; !ok {
			return fmt.Errorf("column %q is not patchable", col)
		}

		assignments = append(assignments, col+" = ?")
		args = append(args, val)
	}

	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now().UTC())

	q := "UPDATE builders SET " + strings.Join(assignments, ", ") + " WHERE name = ? AND state = ?"
	args = append(args, name, state)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (r *repo) Close() error {
	return r.db.Close()
}

type scannable interface {
	Scan(dest ...any) error
}

func rowToRecord(row scannable) (vanscrape.BuilderRecord, error) {
	var record vanscrape.BuilderRecord

	var vanTypes, amenities, services, socialMedia, photos string

	err := row.Scan(
		&record.Name, &record.City, &record.State, &record.Latitude, &record.Longitude,
		&record.Zip, &record.Phone, &record.Email, &record.Website, &record.Description,
		&vanTypes, &amenities, &services, &socialMedia, &photos, &record.Address,
		&record.Verified,
	)
	if err == sql.ErrNoRows {
		return record, storage.ErrNotFound
	}

	if err != nil {
		return record, err
	}

	record.VanTypes = vanscrape.UnmarshalStringList(vanTypes)
	record.Amenities = vanscrape.UnmarshalStringList(amenities)
	record.Services = vanscrape.UnmarshalStringList(services)
	// Tolerates legacy rows where social_media was stored as a JSON array.
	record.SocialMedia = vanscrape.UnmarshalSocialMedia(socialMedia)
	record.Gallery = vanscrape.UnmarshalPhotos(photos)

	return record, nil
}

// mergeRecords overlays incoming onto existing without nulling out any
// value the incoming record does not provide.
func mergeRecords(existing, incoming *vanscrape.BuilderRecord) *vanscrape.BuilderRecord {
	merged := *existing

	if incoming.City != "" {
		merged.City = incoming.City
	}

	if incoming.Zip != "" {
		merged.Zip = incoming.Zip
	}

	if incoming.Geocoded() {
		merged.Latitude = incoming.Latitude
		merged.Longitude = incoming.Longitude
	}

	if incoming.Phone != "" {
		merged.Phone = incoming.Phone
	}

	if incoming.Email != "" {
		merged.Email = incoming.Email
	}

	if incoming.Website != "" {
		merged.Website = incoming.Website
	}

	if incoming.Description != "" {
		merged.Description = incoming.Description
	}

	if incoming.Address != "" {
		merged.Address = incoming.Address
	}

	if len(incoming.VanTypes) > 0 {
		merged.VanTypes = incoming.VanTypes
	}

	if len(incoming.Amenities) > 0 {
		merged.Amenities = incoming.Amenities
	}

	if len(incoming.Services) > 0 {
		merged.Services = incoming.Services
	}

	if len(incoming.SocialMedia) > 0 {
		merged.SocialMedia = incoming.SocialMedia
	}

	if hasRealPhotos(incoming.Gallery) {
		merged.Gallery = incoming.Gallery
	}

	if incoming.Verified {
		merged.Verified = true
	}

	return &merged
}

func hasRealPhotos(gallery []vanscrape.Photo) bool {
	for _, p := range gallery {
		if p.URL != "" {
			return true
		}
	}

	return false
}
