// internal/grid/engine_test.go
package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Board, *Engine) {
	t.Helper()
	board, err := NewBoard(Dimensions{Width: 5, Height: 5}, 1)
	require.NoError(t, err)
	return board, NewEngine(board)
}

var (
	alice = Buyer{ID: "5f0c3ed0-8a1f-4a4d-9be1-000000000001", Name: "alice"}
	bob   = Buyer{ID: "5f0c3ed0-8a1f-4a4d-9be1-000000000002", Name: "bob"}
	carol = Buyer{ID: "5f0c3ed0-8a1f-4a4d-9be1-000000000003", Name: "carol"}
)

func TestQuoteUnownedCellIsListingPrice(t *testing.T) {
	_, engine := newTestEngine(t)

	q, err := engine.Quote(0, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q.Price)
	assert.Empty(t, q.Owner)
}

func TestQuoteOwnedCellDoubles(t *testing.T) {
	_, engine := newTestEngine(t)

	q, err := engine.Quote(0, alice.ID)
	require.NoError(t, err)
	_, err = engine.CommitPurchase(q, alice)
	require.NoError(t, err)

	q, err = engine.Quote(0, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), q.Price)
	assert.Equal(t, alice.ID, q.Owner)
}

func TestQuoteOutOfBounds(t *testing.T) {
	_, engine := newTestEngine(t)

	_, err := engine.Quote(25, alice.ID)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = engine.Quote(-1, alice.ID)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestSelfPurchaseRejected(t *testing.T) {
	board, engine := newTestEngine(t)

	q, err := engine.Quote(3, alice.ID)
	require.NoError(t, err)
	_, err = engine.CommitPurchase(q, alice)
	require.NoError(t, err)

	// Quoting again as the owner is rejected outright.
	_, err = engine.Quote(3, alice.ID)
	assert.True(t, errors.Is(err, ErrAlreadyOwner))

	// A stale pre-ownership quote committed by the owner is rejected too,
	// and nothing is mutated.
	before, err := board.Cell(3)
	require.NoError(t, err)
	_, err = engine.CommitPurchase(Quote{CellID: 3, Price: 2, Owner: alice.ID}, alice)
	assert.True(t, errors.Is(err, ErrAlreadyOwner))
	after, err := board.Cell(3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPurchaseEndToEnd(t *testing.T) {
	board, engine := newTestEngine(t)

	// Cell 0 starts unowned at price 1.
	q, err := engine.Quote(0, alice.ID)
	require.NoError(t, err)
	cell, err := engine.CommitPurchase(q, alice)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, cell.Owner)
	assert.Equal(t, int64(1), cell.Price)
	assert.Empty(t, cell.PriceHistory)

	// Alice draws something.
	artwork := []byte("data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==")
	_, err = engine.UpdateArtwork(0, alice.ID, artwork)
	require.NoError(t, err)

	// Bob buys at double the price; the painting survives the sale.
	q, err = engine.Quote(0, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), q.Price)
	cell, err = engine.CommitPurchase(q, bob)
	require.NoError(t, err)

	assert.Equal(t, bob.ID, cell.Owner)
	assert.Equal(t, int64(2), cell.Price)
	assert.Equal(t, artwork, cell.Artwork)
	require.Len(t, cell.PriceHistory, 1)
	assert.Equal(t, alice.ID, cell.PriceHistory[0].PreviousOwner)
	assert.Equal(t, int64(1), cell.PriceHistory[0].PriceAtTransition)
	assert.False(t, cell.PriceHistory[0].Timestamp.IsZero())

	stored, err := board.Cell(0)
	require.NoError(t, err)
	assert.Equal(t, cell, stored)
}

func TestPriceDoublingLaw(t *testing.T) {
	board, engine := newTestEngine(t)
	buyers := []Buyer{alice, bob, carol, alice, bob, carol}

	for _, buyer := range buyers {
		q, err := engine.Quote(7, buyer.ID)
		require.NoError(t, err)
		_, err = engine.CommitPurchase(q, buyer)
		require.NoError(t, err)

		cell, err := board.Cell(7)
		require.NoError(t, err)

		// price == initialPrice * 2^len(priceHistory), entries in order.
		assert.Equal(t, board.InitialPrice()<<len(cell.PriceHistory), cell.Price)
		for i := 1; i < len(cell.PriceHistory); i++ {
			assert.Equal(t, cell.PriceHistory[i-1].PriceAtTransition*2, cell.PriceHistory[i].PriceAtTransition)
		}
	}

	cell, err := board.Cell(7)
	require.NoError(t, err)
	assert.Len(t, cell.PriceHistory, len(buyers)-1)
}

func TestStaleQuoteConflict(t *testing.T) {
	board, engine := newTestEngine(t)

	// Alice quotes cell 2 while it is unowned.
	q, err := engine.Quote(2, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), q.Price)

	// While she sits on the payment dialog, another client's transition
	// arrives through the store feed: carol owns the cell at price 2.
	owner, price := carol.ID, int64(2)
	board.Reconcile([]RecordPatch{{ID: 2, Owner: &owner, Price: &price}})

	// Committing the stale quote must fail and must not overwrite carol.
	_, err = engine.CommitPurchase(q, alice)
	assert.True(t, errors.Is(err, ErrConflict))

	cell, err := board.Cell(2)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, cell.Owner)
	assert.Equal(t, int64(2), cell.Price)
}

func TestCommitPurchaseRejectsInvalidInput(t *testing.T) {
	_, engine := newTestEngine(t)

	_, err := engine.CommitPurchase(Quote{CellID: 99, Price: 1}, alice)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = engine.CommitPurchase(Quote{CellID: 0, Price: 1}, Buyer{})
	assert.Error(t, err)
}

func TestUpdateArtwork(t *testing.T) {
	board, engine := newTestEngine(t)

	// Non-owner edits are rejected, including on unowned cells.
	_, err := engine.UpdateArtwork(1, alice.ID, []byte("x"))
	assert.True(t, errors.Is(err, ErrNotOwner))

	q, err := engine.Quote(1, alice.ID)
	require.NoError(t, err)
	_, err = engine.CommitPurchase(q, alice)
	require.NoError(t, err)

	_, err = engine.UpdateArtwork(1, bob.ID, []byte("x"))
	assert.True(t, errors.Is(err, ErrNotOwner))

	before, err := board.Cell(1)
	require.NoError(t, err)

	cell, err := engine.UpdateArtwork(1, alice.ID, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), cell.Artwork)

	// Edit, not transition: price, owner and history are untouched.
	assert.Equal(t, before.Price, cell.Price)
	assert.Equal(t, before.Owner, cell.Owner)
	assert.Equal(t, before.PriceHistory, cell.PriceHistory)
}
