// internal/services/canvas_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/models"
	"github.com/pixelmural/mural-backend/internal/store"
)

type stubVerifier struct {
	err  error
	refs []string
}

func (v *stubVerifier) VerifyPayment(_ context.Context, reference string, _ int64) error {
	v.refs = append(v.refs, reference)
	return v.err
}

type failingStore struct {
	*store.MemoryStore
	failUpserts bool
}

func (s *failingStore) UpsertCell(ctx context.Context, rec *models.CellRecord, fields []string) error {
	if s.failUpserts {
		return errors.New("connection refused")
	}
	return s.MemoryStore.UpsertCell(ctx, rec, fields)
}

var (
	testAlice = grid.Buyer{ID: "7f9c24e5-1fb2-4b53-8c0a-111111111111", Name: "alice"}
	testBob   = grid.Buyer{ID: "9d2f11aa-0c3d-4f6e-9b7a-222222222222", Name: "bob"}
)

func newTestService(t *testing.T, cells store.CellStore, verifier PaymentVerifier) *CanvasService {
	t.Helper()
	board, err := grid.NewBoard(grid.Dimensions{Width: 4, Height: 4}, 1)
	require.NoError(t, err)
	return NewCanvasService(board, cells, feed.NewBroadcaster(), verifier, nil, nil)
}

func TestPurchasePersistsAndSurvivesBootstrap(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	verifier := &stubVerifier{}
	svc := newTestService(t, mem, verifier)

	q, err := svc.Quote(5, testAlice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q.Price)

	cell, err := svc.Purchase(ctx, q, testAlice, "pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, testAlice.ID, cell.Owner)
	assert.Equal(t, []string{"pi_test_123"}, verifier.refs)

	art := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	_, err = svc.UpdateArtwork(ctx, 5, testAlice.ID, art)
	require.NoError(t, err)

	// A fresh service over the same store sees the same state.
	svc2 := newTestService(t, mem, verifier)
	require.NoError(t, svc2.Bootstrap(ctx))

	cell2, err := svc2.Cell(5)
	require.NoError(t, err)
	assert.Equal(t, testAlice.ID, cell2.Owner)
	assert.Equal(t, "alice", cell2.OwnerName)
	assert.Equal(t, int64(1), cell2.Price)
	assert.Equal(t, art, cell2.Artwork)
}

func TestPurchaseResaleDoublesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), &stubVerifier{})

	q1, err := svc.Quote(0, testAlice.ID)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, q1, testAlice, "pi_1")
	require.NoError(t, err)

	q2, err := svc.Quote(0, testBob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), q2.Price)

	cell, err := svc.Purchase(ctx, q2, testBob, "pi_2")
	require.NoError(t, err)
	assert.Equal(t, testBob.ID, cell.Owner)
	assert.Equal(t, int64(2), cell.Price)
	require.Len(t, cell.PriceHistory, 1)
	assert.Equal(t, testAlice.ID, cell.PriceHistory[0].PreviousOwner)
	assert.Equal(t, int64(1), cell.PriceHistory[0].PriceAtTransition)
}

func TestPurchaseRejectedWhenPaymentNotConfirmed(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(t, mem, &stubVerifier{err: ErrPaymentNotConfirmed})

	q, err := svc.Quote(3, testAlice.ID)
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, q, testAlice, "pi_bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)

	// Nothing was mutated or persisted.
	cell, err := svc.Cell(3)
	require.NoError(t, err)
	assert.False(t, cell.Owned())

	records, err := mem.LoadCells(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPurchaseRollsBackWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{MemoryStore: store.NewMemoryStore(), failUpserts: true}
	svc := newTestService(t, fs, &stubVerifier{})

	q, err := svc.Quote(7, testAlice.ID)
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, q, testAlice, "pi_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrStoreUnavailable)

	cell, err := svc.Cell(7)
	require.NoError(t, err)
	assert.False(t, cell.Owned())
	assert.Equal(t, int64(1), cell.Price)

	// The same quote commits cleanly once the store recovers.
	fs.failUpserts = false
	committed, err := svc.Purchase(ctx, q, testAlice, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, testAlice.ID, committed.Owner)
}

func TestPurchaseStaleQuoteConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), &stubVerifier{})

	qAlice, err := svc.Quote(2, testAlice.ID)
	require.NoError(t, err)
	qBob, err := svc.Quote(2, testBob.ID)
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, qAlice, testAlice, "pi_a")
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, qBob, testBob, "pi_b")
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrConflict)

	cell, err := svc.Cell(2)
	require.NoError(t, err)
	assert.Equal(t, testAlice.ID, cell.Owner)
}

func TestUpdateArtworkRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), &stubVerifier{})

	_, err := svc.UpdateArtwork(ctx, 1, testAlice.ID, []byte{0x01})
	assert.ErrorIs(t, err, grid.ErrNotOwner)

	q, err := svc.Quote(1, testAlice.ID)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, q, testAlice, "pi_1")
	require.NoError(t, err)

	_, err = svc.UpdateArtwork(ctx, 1, testBob.ID, []byte{0x02})
	assert.ErrorIs(t, err, grid.ErrNotOwner)

	cell, err := svc.UpdateArtwork(ctx, 1, testAlice.ID, []byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, cell.Artwork)
}

func TestArtworkCarriedAcrossResale(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore(), &stubVerifier{})

	q, err := svc.Quote(9, testAlice.ID)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, q, testAlice, "pi_1")
	require.NoError(t, err)

	art := []byte{0x10, 0x20, 0x30}
	_, err = svc.UpdateArtwork(ctx, 9, testAlice.ID, art)
	require.NoError(t, err)

	q2, err := svc.Quote(9, testBob.ID)
	require.NoError(t, err)
	cell, err := svc.Purchase(ctx, q2, testBob, "pi_2")
	require.NoError(t, err)

	assert.Equal(t, testBob.ID, cell.Owner)
	assert.Equal(t, art, cell.Artwork)
}

func TestFeedSubscriberSeesPurchases(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	verifier := &stubVerifier{}
	board, err := grid.NewBoard(grid.Dimensions{Width: 4, Height: 4}, 1)
	require.NoError(t, err)
	broadcaster := feed.NewBroadcaster()
	svc := NewCanvasService(board, mem, broadcaster, verifier, nil, nil)

	sub := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(sub)

	q, err := svc.Quote(6, testAlice.ID)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, q, testAlice, "pi_1")
	require.NoError(t, err)

	select {
	case records := <-sub.C:
		require.Len(t, records, 1)
		assert.Equal(t, 6, records[0].ID)
		require.NotNil(t, records[0].OwnerID)
		assert.Equal(t, testAlice.ID, records[0].OwnerID.String())
	default:
		t.Fatal("expected a change feed delivery after purchase")
	}
}

func TestNeighborsReturnsSurroundingCells(t *testing.T) {
	svc := newTestService(t, store.NewMemoryStore(), &stubVerifier{})

	cells, err := svc.Neighbors(5)
	require.NoError(t, err)
	require.Len(t, cells, 8)

	ids := make([]int, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	assert.Equal(t, []int{0, 1, 2, 4, 6, 8, 9, 10}, ids)

	_, err = svc.Neighbors(99)
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)
}
