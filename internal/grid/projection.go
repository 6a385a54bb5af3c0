// internal/grid/projection.go
package grid

import "math"

// Stats are the display aggregates derived from a grid snapshot. They are a
// pure function of the snapshot; TotalRevenueProxy in particular is a
// display-only sum of listing prices, not audited cash accounting.
type Stats struct {
	TotalCells          int   `json:"total_cells"`
	PurchasedCells      int   `json:"purchased_cells"`
	AvailableCells      int   `json:"available_cells"`
	PercentagePurchased int   `json:"percentage_purchased"`
	TotalRevenueProxy   int64 `json:"total_revenue_proxy"`
}

// ComputeStats derives the aggregates from a cell collection.
func ComputeStats(cells []*Cell) Stats {
	stats := Stats{TotalCells: len(cells)}
	for _, c := range cells {
		if c.Owned() {
			stats.PurchasedCells++
		}
		stats.TotalRevenueProxy += c.Price
	}
	stats.AvailableCells = stats.TotalCells - stats.PurchasedCells
	if stats.TotalCells > 0 {
		stats.PercentagePurchased = int(math.Round(float64(stats.PurchasedCells) / float64(stats.TotalCells) * 100))
	}
	return stats
}

// Stats recomputes the projection for the current snapshot.
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ComputeStats(b.cells)
}
