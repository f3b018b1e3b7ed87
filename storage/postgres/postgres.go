// Package postgres provides the builder repository on PostgreSQL, used
// when DATABASE_URL is configured.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type repo struct {
	db *sql.DB
}

func New(dsn string) (storage.Repository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := initSchema(db); err != nil {
		db.Close()

		return nil, err
	}

	return &repo{db: db}, nil
}

func NewWithDB(db *sql.DB) storage.Repository {
	return &repo{db: db}
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS builders (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT DEFAULT '',
		state TEXT NOT NULL,
		lat DOUBLE PRECISION DEFAULT 0,
		lng DOUBLE PRECISION DEFAULT 0,
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
		verified BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(name, state)
	);
	CREATE INDEX IF NOT EXISTS idx_builders_state ON builders(state);
	`

	_, err := db.Exec(schema)

	return err
}

const selectColumns = `name, city, state, lat, lng, zip, phone, email, website,
	description, van_types, amenities, services, social_media, photos, address, verified`

func (r *repo) Get(ctx context.Context, name, state string) (vanscrape.BuilderRecord, error) {
	const q = `SELECT ` + selectColumns + ` FROM builders WHERE name = $1 AND state = $2`

	row := r.db.QueryRowContext(ctx, q, name, state)

	return rowToRecord(row)
}

func (r *repo) Upsert(ctx context.Context, record *vanscrape.BuilderRecord) error {
	existing, err := r.Get(ctx, record.Name, record.State)

	switch {
	case err == nil:
		return r.update(ctx, merge(&existing, record))
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
		 van_types, amenities, services, social_media, photos, address, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.ExecContext(ctx, q,
		record.Name, record.City, record.State, record.Latitude, record.Longitude,
		record.Zip, record.Phone, record.Email, record.Website, record.Description,
		vanTypes, amenities, services, socialMedia, photos, record.Address, record.Verified,
	)

	return err
}

func (r *repo) update(ctx context.Context, record *vanscrape.BuilderRecord) error {
	vanTypes, amenities, services, socialMedia, photos, err := record.MarshalLists()
	if err != nil {
		return err
	}

	const q = `UPDATE builders SET
		city = $1, lat = $2, lng = $3, zip = $4, phone = $5, email = $6, website = $7,
		description = $8, van_types = $9, amenities = $10, services = $11,
		social_media = $12, photos = $13, address = $14, verified = $15, updated_at = NOW()
		WHERE name = $16 AND state = $17`

	_, err = r.db.ExecContext(ctx, q,
		record.City, record.Latitude, record.Longitude, record.Zip, record.Phone,
		record.Email, record.Website, record.Description, vanTypes, amenities,
		services, socialMedia, photos, record.Address, record.Verified,
		record.Name, record.State,
	)

	return err
}

func (r *repo) Select(ctx context.Context, params storage.SelectParams) ([]vanscrape.BuilderRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM builders`

	var args []any

	var conditions []string

	if params.State != "" {
		args = append(args, params.State)
		conditions = append(conditions, fmt.Sprintf("LOWER(state) = LOWER($%d)", len(args)))
	}

	if params.Query != "" {
		args = append(args, "%"+strings.ToLower(params.Query)+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(city) LIKE $%d OR LOWER(description) LIKE $%d)", n, n, n))
	}

	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}

	q += " ORDER BY state, name"

	if params.Limit > 0 {
		args = append(args, params.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
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
	_, err := r.db.ExecContext(ctx, `DELETE FROM builders WHERE LOWER(state) = LOWER($1)`, state)

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

		args = append(args, val)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	assignments = append(assignments, "updated_at = NOW()")

	args = append(args, name)
	nameIdx := len(args)
	args = append(args, state)
	stateIdx := len(args)

	q := fmt.Sprintf("UPDATE builders SET %s WHERE name = $%d AND state = $%d",
		strings.Join(assignments, ", "), nameIdx, stateIdx)

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
	record.SocialMedia = vanscrape.UnmarshalSocialMedia(socialMedia)
	record.Gallery = vanscrape.UnmarshalPhotos(photos)

	return record, nil
}

// merge mirrors the sqlite backend's rule: incoming values win only
// when present.
func merge(existing, incoming *vanscrape.BuilderRecord) *vanscrape.BuilderRecord {
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

	for _, p := range incoming.Gallery {
		if p.URL != "" {
			merged.Gallery = incoming.Gallery
			break
		}
	}

	if incoming.Verified {
		merged.Verified = true
	}

	return &merged
}
