// internal/grid/board.go
package grid

import (
	"fmt"
	"sync"
)

// Board owns the in-memory grid snapshot. Mutation goes through exactly two
// paths: the ownership transition engine (purchase, artwork edit) and the
// reconciliation from the persistent store's change feed. Reads never block
// on either and always observe a complete snapshot.
type Board struct {
	mu           sync.RWMutex
	dims         Dimensions
	initialPrice int64
	cells        []*Cell
}

// NewBoard initializes width*height cells in row-major order, all unowned at
// the initial listing price with the default fill color.
func NewBoard(dims Dimensions, initialPrice int64) (*Board, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", dims.Width, dims.Height)
	}
	if initialPrice <= 0 {
		return nil, fmt.Errorf("initial price must be positive, got %d", initialPrice)
	}
	return &Board{
		dims:         dims,
		initialPrice: initialPrice,
		cells:        defaultCells(dims, initialPrice),
	}, nil
}

func defaultCells(dims Dimensions, price int64) []*Cell {
	cells := make([]*Cell, dims.CellCount())
	for id := range cells {
		cells[id] = newCell(id, price)
	}
	return cells
}

func (b *Board) Dimensions() Dimensions {
	return b.dims
}

func (b *Board) InitialPrice() int64 {
	return b.initialPrice
}

// Cell returns a copy of one cell.
func (b *Board) Cell(id int) (*Cell, error) {
	if !b.dims.Contains(id) {
		return nil, fmt.Errorf("cell id %d: %w", id, ErrOutOfBounds)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[id].Clone(), nil
}

// Snapshot returns a copy of every cell in id order.
func (b *Board) Snapshot() []*Cell {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Cell, len(b.cells))
	for i, c := range b.cells {
		out[i] = c.Clone()
	}
	return out
}

// Restore puts a previously captured cell copy back in place after a failed
// persistence write. The rollback applies only while the cell still holds
// the optimistic value of the failed commit: the store feed is authoritative,
// so a reconciliation that landed in between must not be overwritten.
func (b *Board) Restore(prev, optimistic *Cell) {
	if prev == nil || optimistic == nil || !b.dims.Contains(prev.ID) {
		return
	}
	b.mu.Lock()
	if b.cells[prev.ID].equal(optimistic) {
		b.cells[prev.ID] = prev.Clone()
	}
	b.mu.Unlock()
}
