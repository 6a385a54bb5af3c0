// internal/store/memory_store.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pixelmural/mural-backend/internal/models"
)

// MemoryStore is an in-memory CellStore with the same upsert-merge
// semantics as the PostgreSQL store. Used in tests and local development
// without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]models.CellRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int]models.CellRecord)}
}

func (s *MemoryStore) UpsertCell(_ context.Context, rec *models.CellRecord, fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.records[rec.ID]
	if !ok {
		existing = *rec
		existing.CreatedAt = now
		existing.UpdatedAt = now
		s.records[rec.ID] = existing
		return nil
	}

	for _, field := range fields {
		switch field {
		case FieldOwner:
			existing.OwnerID = rec.OwnerID
		case FieldOwnerName:
			existing.OwnerName = rec.OwnerName
		case FieldPrice:
			existing.Price = rec.Price
		case FieldArtwork:
			existing.Artwork = append([]byte(nil), rec.Artwork...)
		case FieldArtworkURL:
			existing.ArtworkURL = rec.ArtworkURL
		case FieldFillColor:
			existing.FillColor = rec.FillColor
		case FieldPriceHistory:
			existing.PriceHistory = append(models.HistoryEntries(nil), rec.PriceHistory...)
		}
	}
	existing.UpdatedAt = now
	s.records[rec.ID] = existing
	return nil
}

func (s *MemoryStore) LoadCells(_ context.Context) ([]models.CellRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CellRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
