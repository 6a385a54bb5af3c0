// internal/grid/reconcile.go
package grid

import "github.com/sirupsen/logrus"

// RecordPatch is one externally pushed cell record. Nil fields were absent
// from the record and keep the freshly initialized default, not the previous
// in-memory value: the store is the single source of truth and reconciliation
// must not accumulate local-only state.
type RecordPatch struct {
	ID           int
	Owner        *string
	OwnerName    *string
	Price        *int64
	Artwork      []byte
	FillColor    *string
	PriceHistory []HistoryEntry
}

// Reconcile replaces the whole grid with a fresh default grid merged with the
// incoming records. The swap is atomic from a reader's point of view, and the
// operation is idempotent: applying the same batch twice yields the same grid.
// Records addressing cells outside the grid are dropped and logged; they never
// abort the reconciliation. Returns the number of applied and dropped records.
func (b *Board) Reconcile(patches []RecordPatch) (applied, dropped int) {
	fresh := defaultCells(b.dims, b.initialPrice)

	for _, p := range patches {
		if !b.dims.Contains(p.ID) {
			dropped++
			logrus.WithFields(logrus.Fields{
				"cell_id":    p.ID,
				"cell_count": b.dims.CellCount(),
			}).Warn("Dropping anomalous cell record during reconciliation")
			continue
		}

		cell := fresh[p.ID]
		if p.Owner != nil {
			cell.Owner = *p.Owner
		}
		if p.OwnerName != nil {
			cell.OwnerName = *p.OwnerName
		}
		if p.Price != nil {
			cell.Price = *p.Price
		}
		if p.Artwork != nil {
			cell.Artwork = append([]byte(nil), p.Artwork...)
		}
		if p.FillColor != nil {
			cell.FillColor = *p.FillColor
		}
		if p.PriceHistory != nil {
			cell.PriceHistory = append([]HistoryEntry(nil), p.PriceHistory...)
		}
		applied++
	}

	b.mu.Lock()
	b.cells = fresh
	b.mu.Unlock()
	return applied, dropped
}
