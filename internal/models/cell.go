// internal/models/cell.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pixelmural/mural-backend/internal/grid"
)

// HistoryEntries stores a cell's ordered transition history as JSONB.
type HistoryEntries []grid.HistoryEntry

func (h HistoryEntries) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

func (h *HistoryEntries) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("unsupported type for price history")
	}

	return json.Unmarshal(bytes, h)
}

// CellRecord is the persisted form of one grid cell. A row exists only once
// a cell has left its default state; the grid core rebuilds defaults on
// every reconciliation, so absent rows simply mean "unowned at the initial
// price". The primary key is the deterministic row-major cell id, never
// generated.
type CellRecord struct {
	ID           int            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID      *uuid.UUID     `json:"owner_id" gorm:"type:uuid;index"`
	OwnerName    string         `json:"owner_name" gorm:"size:50"`
	Price        int64          `json:"price" gorm:"not null;default:1"`
	Artwork      []byte         `json:"artwork,omitempty" gorm:"type:bytea"`
	ArtworkURL   string         `json:"artwork_url,omitempty" gorm:"size:512"`
	FillColor    string         `json:"fill_color" gorm:"size:16"`
	PriceHistory HistoryEntries `json:"price_history" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
