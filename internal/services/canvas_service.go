// internal/services/canvas_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/models"
	"github.com/pixelmural/mural-backend/internal/store"
)

// PaymentVerifier is the success/failure signal from the external payment
// processor. Implementations must return a non-nil error unless a payment
// matching the reference has been captured for exactly the given amount.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string, amount int64) error
}

// CanvasService wires the ownership transition engine to the persistent
// store and its change feed. It owns the only two mutation paths into the
// in-memory grid: engine commits (with their optimistic local update) and
// feed-driven reconciliation.
type CanvasService struct {
	board    *grid.Board
	engine   *grid.Engine
	cells    store.CellStore
	feed     *feed.Broadcaster
	payments PaymentVerifier
	receipts *ReceiptService
	storage  *StorageService
}

func NewCanvasService(
	board *grid.Board,
	cells store.CellStore,
	broadcaster *feed.Broadcaster,
	payments PaymentVerifier,
	receipts *ReceiptService,
	storage *StorageService,
) *CanvasService {
	return &CanvasService{
		board:    board,
		engine:   grid.NewEngine(board),
		cells:    cells,
		feed:     broadcaster,
		payments: payments,
		receipts: receipts,
		storage:  storage,
	}
}

// Bootstrap loads the persisted record set and reconciles the in-memory
// grid before the server starts accepting requests.
func (s *CanvasService) Bootstrap(ctx context.Context) error {
	records, err := s.cells.LoadCells(ctx)
	if err != nil {
		return fmt.Errorf("failed to bootstrap canvas: %w", err)
	}
	s.applyRecords(records)
	return nil
}

// Run consumes the store change feed until the context is cancelled. The
// feed is authoritative: its reconciliations overwrite optimistic local
// updates even when they briefly disagree.
func (s *CanvasService) Run(ctx context.Context) {
	sub := s.feed.Subscribe()
	defer s.feed.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case records, ok := <-sub.C:
			if !ok {
				return
			}
			s.applyRecords(records)
		}
	}
}

func (s *CanvasService) Dimensions() grid.Dimensions {
	return s.board.Dimensions()
}

func (s *CanvasService) Snapshot() []*grid.Cell {
	return s.board.Snapshot()
}

func (s *CanvasService) Stats() grid.Stats {
	return s.board.Stats()
}

func (s *CanvasService) Cell(id int) (*grid.Cell, error) {
	return s.board.Cell(id)
}

func (s *CanvasService) Neighbors(id int) ([]*grid.Cell, error) {
	ids, err := s.board.Dimensions().NeighborsOf(id)
	if err != nil {
		return nil, err
	}

	cells := make([]*grid.Cell, 0, len(ids))
	for _, nid := range ids {
		cell, err := s.board.Cell(nid)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// Quote computes the price the buyer would pay for the cell right now. The
// quote must be sent back verbatim with the purchase request so the engine
// can detect staleness before committing.
func (s *CanvasService) Quote(cellID int, buyerID string) (grid.Quote, error) {
	return s.engine.Quote(cellID, buyerID)
}

// Purchase commits a quoted ownership transition. The payment must already
// be captured: nothing is mutated until the verifier confirms the reference
// covers the quoted amount. A store write failure undoes the optimistic
// in-memory update and surfaces as ErrStoreUnavailable; the advisory
// receipt write never rolls a committed transition back.
func (s *CanvasService) Purchase(ctx context.Context, q grid.Quote, buyer grid.Buyer, paymentRef string) (*grid.Cell, error) {
	if err := s.payments.VerifyPayment(ctx, paymentRef, q.Price); err != nil {
		return nil, fmt.Errorf("payment not confirmed for cell %d: %w", q.CellID, err)
	}

	prev, err := s.board.Cell(q.CellID)
	if err != nil {
		return nil, err
	}

	cell, err := s.engine.CommitPurchase(q, buyer)
	if err != nil {
		return nil, err
	}

	rec := cellToRecord(cell)
	fields := []string{store.FieldOwner, store.FieldOwnerName, store.FieldPrice, store.FieldPriceHistory}
	if err := s.cells.UpsertCell(ctx, rec, fields); err != nil {
		s.board.Restore(prev, cell)
		return nil, fmt.Errorf("cell %d: %w: %v", q.CellID, grid.ErrStoreUnavailable, err)
	}

	s.publish(ctx)

	if s.receipts != nil {
		go func() {
			if err := s.receipts.RecordPurchase(prev, cell, paymentRef); err != nil {
				logrus.WithError(err).WithField("cell_id", cell.ID).Warn("Failed to record purchase receipt")
			}
		}()
	}

	return cell, nil
}

// UpdateArtwork replaces the artwork of a cell the editor owns. Large
// payloads are additionally archived to object storage, best effort.
func (s *CanvasService) UpdateArtwork(ctx context.Context, cellID int, editorID string, artwork []byte) (*grid.Cell, error) {
	prev, err := s.board.Cell(cellID)
	if err != nil {
		return nil, err
	}

	cell, err := s.engine.UpdateArtwork(cellID, editorID, artwork)
	if err != nil {
		return nil, err
	}

	rec := cellToRecord(cell)
	fields := []string{store.FieldArtwork}

	if s.storage != nil {
		url, err := s.storage.ArchiveArtwork(cellID, artwork)
		if err != nil {
			logrus.WithError(err).WithField("cell_id", cellID).Warn("Failed to archive artwork to object storage")
		} else if url != "" {
			rec.ArtworkURL = url
			fields = append(fields, store.FieldArtworkURL)
		}
	}

	if err := s.cells.UpsertCell(ctx, rec, fields); err != nil {
		s.board.Restore(prev, cell)
		return nil, fmt.Errorf("cell %d: %w: %v", cellID, grid.ErrStoreUnavailable, err)
	}

	s.publish(ctx)
	return cell, nil
}

// publish re-reads the full record set and pushes it through the change
// feed, mirroring a store that redelivers everything on every change.
func (s *CanvasService) publish(ctx context.Context) {
	records, err := s.cells.LoadCells(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load cell records for change feed")
		return
	}
	s.feed.Publish(records)
}

func (s *CanvasService) applyRecords(records []models.CellRecord) {
	patches := make([]grid.RecordPatch, len(records))
	for i, rec := range records {
		patches[i] = recordToPatch(rec)
	}
	applied, dropped := s.board.Reconcile(patches)
	logrus.WithFields(logrus.Fields{
		"applied": applied,
		"dropped": dropped,
	}).Debug("Reconciled canvas from store records")
}

func cellToRecord(c *grid.Cell) *models.CellRecord {
	rec := &models.CellRecord{
		ID:           c.ID,
		OwnerName:    c.OwnerName,
		Price:        c.Price,
		Artwork:      c.Artwork,
		FillColor:    c.FillColor,
		PriceHistory: models.HistoryEntries(c.PriceHistory),
	}
	if uid, err := uuid.Parse(c.Owner); err == nil {
		rec.OwnerID = &uid
	}
	return rec
}

func recordToPatch(rec models.CellRecord) grid.RecordPatch {
	patch := grid.RecordPatch{ID: rec.ID}

	if rec.OwnerID != nil {
		owner := rec.OwnerID.String()
		patch.Owner = &owner
	}
	if rec.OwnerName != "" {
		name := rec.OwnerName
		patch.OwnerName = &name
	}
	price := rec.Price
	patch.Price = &price
	if len(rec.Artwork) > 0 {
		patch.Artwork = rec.Artwork
	}
	if rec.FillColor != "" {
		color := rec.FillColor
		patch.FillColor = &color
	}
	if rec.PriceHistory != nil {
		patch.PriceHistory = []grid.HistoryEntry(rec.PriceHistory)
	}
	return patch
}
