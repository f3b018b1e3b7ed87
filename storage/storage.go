// Package storage defines the builder repository contract and the
// result writer that moves accepted records from the scrape pipeline
// into the authoritative store.
package storage

import (
	"context"
	"errors"

	"github.com/vanlist/van-builder-scraper/vanscrape"
)

var ErrNotFound = errors.New("builder not found")

// PatchableColumns are the columns a reconciliation patch may touch.
var PatchableColumns = map[string]struct{}{
	"city":         {},
	"zip":          {},
	"lat":          {},
	"lng":          {},
	"phone":        {},
	"email":        {},
	"website":      {},
	"description":  {},
	"address":      {},
	"social_media": {},
}

type SelectParams struct {
	State string
	Query string
	Limit int
}

// Repository is the single authoritative store for builder records.
// There is deliberately no second "site" database to replicate into;
// the read API queries this store directly.
type Repository interface {
	// Upsert inserts or merges on the (name, state) natural key. A merge
	// never overwrites an existing non-empty column with an empty
	// incoming value.
	Upsert(ctx context.Context, record *vanscrape.BuilderRecord) error
	Get(ctx context.Context, name, state string) (vanscrape.BuilderRecord, error)
	Select(ctx context.Context, params SelectParams) ([]vanscrape.BuilderRecord, error)
	// DeleteByState clears a state ahead of a fresh import.
	DeleteByState(ctx context.Context, state string) error
	// UpdateFields applies a column-level patch to one record.
	UpdateFields(ctx context.Context, name, state string, fields map[string]any) error
	Close() error
}
