// internal/grid/engine.go
package grid

import (
	"errors"
	"fmt"
	"time"
)

// Buyer is the identity of a prospective purchaser, as issued by the
// identity provider.
type Buyer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Quote is the price computed for a prospective buyer before payment is
// requested. Owner is the cell's owner at quote time (empty if unowned);
// the commit step compares both fields against the latest state so a stale
// quote can never overwrite a concurrent transition.
type Quote struct {
	CellID int    `json:"cell_id"`
	Price  int64  `json:"price"`
	Owner  string `json:"owner,omitempty"`
}

// Engine is the sole authority for changing a cell's owner, price and
// history. Payment capture is external: CommitPurchase is invoked only
// after the caller has obtained a successful payment confirmation for the
// quoted amount.
type Engine struct {
	board *Board
}

func NewEngine(board *Board) *Engine {
	return &Engine{board: board}
}

// Quote computes what buyerID must pay for the cell right now: the listing
// price if the cell is unowned, double the current price otherwise. The
// current owner is rejected with ErrAlreadyOwner; owners edit artwork
// through UpdateArtwork, not through purchase.
func (e *Engine) Quote(cellID int, buyerID string) (Quote, error) {
	cell, err := e.board.Cell(cellID)
	if err != nil {
		return Quote{}, err
	}
	if buyerID != "" && cell.Owner == buyerID {
		return Quote{}, fmt.Errorf("cell %d: %w", cellID, ErrAlreadyOwner)
	}

	price := cell.Price
	if cell.Owned() {
		price *= 2
	}
	return Quote{CellID: cellID, Price: price, Owner: cell.Owner}, nil
}

// CommitPurchase applies a quoted transition. It re-reads the cell under
// the write lock and aborts with ErrConflict if the owner or the price no
// longer matches the quote. On success the cell's history gains one entry
// when a previous owner existed, the owner and price are updated, and the
// artwork and fill color are carried forward untouched. The updated cell
// is returned as a copy.
func (e *Engine) CommitPurchase(q Quote, buyer Buyer) (*Cell, error) {
	if buyer.ID == "" {
		return nil, errors.New("buyer identity is required")
	}
	if !e.board.dims.Contains(q.CellID) {
		return nil, fmt.Errorf("cell id %d: %w", q.CellID, ErrOutOfBounds)
	}

	e.board.mu.Lock()
	defer e.board.mu.Unlock()

	cell := e.board.cells[q.CellID]
	if cell.Owner == buyer.ID {
		return nil, fmt.Errorf("cell %d: %w", q.CellID, ErrAlreadyOwner)
	}

	// Stale-quote detection: recompute against the latest state.
	price := cell.Price
	if cell.Owned() {
		price *= 2
	}
	if cell.Owner != q.Owner || price != q.Price {
		return nil, fmt.Errorf("cell %d quoted at %d for owner %q: %w", q.CellID, q.Price, q.Owner, ErrConflict)
	}

	if cell.Owned() {
		cell.PriceHistory = append(cell.PriceHistory, HistoryEntry{
			PreviousOwner:     cell.Owner,
			PriceAtTransition: cell.Price,
			Timestamp:         time.Now().UTC(),
		})
	}
	cell.Owner = buyer.ID
	cell.OwnerName = buyer.Name
	cell.Price = price

	return cell.Clone(), nil
}

// UpdateArtwork replaces the artwork of a cell the editor currently owns.
// Price, owner and history are untouched: this is an edit, not a transition.
func (e *Engine) UpdateArtwork(cellID int, editorID string, artwork []byte) (*Cell, error) {
	if !e.board.dims.Contains(cellID) {
		return nil, fmt.Errorf("cell id %d: %w", cellID, ErrOutOfBounds)
	}

	e.board.mu.Lock()
	defer e.board.mu.Unlock()

	cell := e.board.cells[cellID]
	if editorID == "" || cell.Owner != editorID {
		return nil, fmt.Errorf("cell %d: %w", cellID, ErrNotOwner)
	}

	cell.Artwork = append([]byte(nil), artwork...)
	return cell.Clone(), nil
}
