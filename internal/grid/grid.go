// internal/grid/grid.go
package grid

import "fmt"

// Dimensions is the fixed coordinate space of the mural. It is configuration,
// not runtime state: the cell count never changes for the life of the process.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) CellCount() int {
	return d.Width * d.Height
}

// Contains reports whether id addresses a cell of this grid.
func (d Dimensions) Contains(id int) bool {
	return id >= 0 && id < d.CellCount()
}

// IDOf maps a (column, row) position to the cell id in row-major order.
func (d Dimensions) IDOf(col, row int) (int, error) {
	if col < 0 || col >= d.Width || row < 0 || row >= d.Height {
		return 0, fmt.Errorf("position (%d, %d): %w", col, row, ErrOutOfBounds)
	}
	return row*d.Width + col, nil
}

// PositionOf is the inverse of IDOf.
func (d Dimensions) PositionOf(id int) (col, row int, err error) {
	if !d.Contains(id) {
		return 0, 0, fmt.Errorf("cell id %d: %w", id, ErrOutOfBounds)
	}
	return id % d.Width, id / d.Width, nil
}

// NeighborsOf returns the ids of the up-to-8 orthogonal and diagonal
// neighbors of id that lie within bounds, in row-major order.
func (d Dimensions) NeighborsOf(id int) ([]int, error) {
	col, row, err := d.PositionOf(id)
	if err != nil {
		return nil, err
	}

	neighbors := make([]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nid, err := d.IDOf(col+dc, row+dr)
			if err != nil {
				continue
			}
			neighbors = append(neighbors, nid)
		}
	}
	return neighbors, nil
}
