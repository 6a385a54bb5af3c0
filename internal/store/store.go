// internal/store/store.go
package store

import (
	"context"

	"github.com/pixelmural/mural-backend/internal/models"
)

// Column names accepted by UpsertCell. Callers list exactly the fields their
// write is allowed to touch; everything else keeps its stored value.
const (
	FieldOwner        = "owner_id"
	FieldOwnerName    = "owner_name"
	FieldPrice        = "price"
	FieldArtwork      = "artwork"
	FieldArtworkURL   = "artwork_url"
	FieldFillColor    = "fill_color"
	FieldPriceHistory = "price_history"
)

// CellStore is the persistent store contract the grid core depends on:
// upsert-merge of a record keyed by cell id with a named subset of fields,
// and a read of the full current record set that drives reconciliation.
type CellStore interface {
	UpsertCell(ctx context.Context, rec *models.CellRecord, fields []string) error
	LoadCells(ctx context.Context) ([]models.CellRecord, error)
}
