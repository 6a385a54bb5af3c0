// internal/grid/cell.go
package grid

import (
	"bytes"
	"time"
)

// DefaultFillColor is the background color of a cell that has never been
// painted or owned.
const DefaultFillColor = "#f3f4f6"

// HistoryEntry records one completed ownership transition of a cell.
// PriceAtTransition is the price the outgoing owner paid, i.e. the amount
// the cell was listed at before this transition doubled it.
type HistoryEntry struct {
	PreviousOwner     string    `json:"previous_owner"`
	PriceAtTransition int64     `json:"price_at_transition"`
	Timestamp         time.Time `json:"timestamp"`
}

// Cell is the authoritative in-memory state of one grid position.
// Owner is the stable user identifier issued by the identity provider;
// empty means the cell is unowned. Price is the amount the next buyer
// must pay, in demo currency units. Artwork is an opaque encoded image
// payload produced by the drawing tool; nil means the cell renders its
// fill color instead.
type Cell struct {
	ID           int            `json:"id"`
	Owner        string         `json:"owner,omitempty"`
	OwnerName    string         `json:"owner_name,omitempty"`
	Price        int64          `json:"price"`
	Artwork      []byte         `json:"artwork,omitempty"`
	FillColor    string         `json:"fill_color"`
	PriceHistory []HistoryEntry `json:"price_history"`
}

func (c *Cell) Owned() bool {
	return c.Owner != ""
}

// Clone returns a deep copy. Readers only ever see clones, never the
// board's internal cells.
func (c *Cell) Clone() *Cell {
	out := *c
	if c.Artwork != nil {
		out.Artwork = append([]byte(nil), c.Artwork...)
	}
	if c.PriceHistory != nil {
		out.PriceHistory = append([]HistoryEntry(nil), c.PriceHistory...)
	}
	return &out
}

// equal reports whether two cells hold the same state. Artwork is compared
// byte for byte; history by transition owner and price.
func (c *Cell) equal(o *Cell) bool {
	if c.ID != o.ID || c.Owner != o.Owner || c.OwnerName != o.OwnerName ||
		c.Price != o.Price || c.FillColor != o.FillColor ||
		!bytes.Equal(c.Artwork, o.Artwork) ||
		len(c.PriceHistory) != len(o.PriceHistory) {
		return false
	}
	for i := range c.PriceHistory {
		if c.PriceHistory[i].PreviousOwner != o.PriceHistory[i].PreviousOwner ||
			c.PriceHistory[i].PriceAtTransition != o.PriceHistory[i].PriceAtTransition {
			return false
		}
	}
	return true
}

func newCell(id int, price int64) *Cell {
	return &Cell{
		ID:           id,
		Price:        price,
		FillColor:    DefaultFillColor,
		PriceHistory: []HistoryEntry{},
	}
}
