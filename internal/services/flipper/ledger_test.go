package flipper

import (
	"testing"

	"osrs-flipper/internal/models"
	"osrs-flipper/internal/quant"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestReconciler(store FlipStore) *Reconciler {
	return NewReconciler(store, quant.DefaultTradingConfig(), testLogger())
}

func tx(id string, itemID int, txType string, qty int, price int64, t int64) models.IncomingTransaction {
	in := models.IncomingTransaction{
		ID:       id,
		ItemID:   itemID,
		ItemName: "Cannonball",
		Type:     txType,
		Quantity: qty,
		Price:    price,
		Time:     float64(t),
	}
	if txType == quant.TxBuy {
		in.AmountSpent = price * int64(qty)
	}
	return in
}

func TestIngestRealizedProfit(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	flips, err := r.Ingest("alice", []models.IncomingTransaction{
		tx("b1", 2, quant.TxBuy, 10, 100, 100),
		tx("b2", 2, quant.TxBuy, 5, 120, 200),
		tx("s1", 2, quant.TxSell, 12, 150, 300),
	}, 1000)
	require.NoError(t, err)
	require.Len(t, flips, 1)

	f := flips[0]
	assert.Equal(t, 15, f.OpenedQuantity)
	assert.Equal(t, int64(1600), f.Spent)
	assert.Equal(t, 12, f.ClosedQuantity)
	assert.Equal(t, int64(36), f.TaxPaid)
	assert.Equal(t, int64(1764), f.ReceivedPostTax)
	assert.Equal(t, int64(524), f.Profit)
	assert.False(t, f.IsClosed)
	assert.Equal(t, "Cannonball", f.ItemName)
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	batch := []models.IncomingTransaction{
		tx("b1", 2, quant.TxBuy, 10, 100, 100),
		tx("s1", 2, quant.TxSell, 4, 150, 200),
	}

	first, err := r.Ingest("alice", batch, 1000)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := r.Ingest("alice", batch, 1000)
	require.NoError(t, err)
	assert.Empty(t, second)

	flips, err := store.UserFlips("alice")
	require.NoError(t, err)
	require.Len(t, flips, 1)
	assert.Len(t, flips[0].Transactions, 2)
	assert.Equal(t, first[0].Profit, flips[0].Profit)
}

func TestIngestClosesAndReopens(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	flips, err := r.Ingest("alice", []models.IncomingTransaction{
		tx("b1", 2, quant.TxBuy, 5, 100, 100),
		tx("s1", 2, quant.TxSell, 5, 150, 200),
	}, 1000)
	require.NoError(t, err)
	require.Len(t, flips, 1)
	assert.True(t, flips[0].IsClosed)
	assert.Equal(t, int64(200), flips[0].ClosedTime)

	// A later buy opens a new flip rather than touching the closed one.
	flips, err = r.Ingest("alice", []models.IncomingTransaction{
		tx("b2", 2, quant.TxBuy, 3, 110, 300),
	}, 1000)
	require.NoError(t, err)
	require.Len(t, flips, 1)
	assert.False(t, flips[0].IsClosed)
	assert.Equal(t, 3, flips[0].OpenedQuantity)
	assert.Len(t, store.flipIDs(), 2)
}

func TestIngestDropsSellWithNoOpenFlip(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	flips, err := r.Ingest("alice", []models.IncomingTransaction{
		tx("s1", 2, quant.TxSell, 5, 150, 100),
	}, 1000)
	require.NoError(t, err)
	assert.Empty(t, flips)
	assert.Empty(t, store.flipIDs())
}

func TestIngestNormalizesMillisAndMissingFields(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	in := models.IncomingTransaction{
		ItemID:   2,
		Type:     "BUY",
		Quantity: 10,
		Price:    100,
		Time:     float64(1_700_000_000_000), // milliseconds
	}
	flips, err := r.Ingest("alice", []models.IncomingTransaction{in}, 1000)
	require.NoError(t, err)
	require.Len(t, flips, 1)

	f := flips[0]
	require.Len(t, f.Transactions, 1)
	assert.Equal(t, int64(1_700_000_000), f.Transactions[0].Time)
	assert.NotEmpty(t, f.Transactions[0].ID)
	// Missing amount_spent on a buy defaults to price * quantity.
	assert.Equal(t, int64(1000), f.Spent)
}

func TestIngestRetriesOnVersionConflict(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	_, err := r.Ingest("alice", []models.IncomingTransaction{
		tx("b1", 2, quant.TxBuy, 10, 100, 100),
	}, 1000)
	require.NoError(t, err)
	flipID := store.flipIDs()[0]

	// A concurrent writer bumps the version between our read and save.
	store.beforeSave = func(s *memStore) { s.bumpVersion(flipID) }

	flips, err := r.Ingest("alice", []models.IncomingTransaction{
		tx("s1", 2, quant.TxSell, 4, 150, 200),
	}, 1000)
	require.NoError(t, err)
	require.Len(t, flips, 1)
	assert.Equal(t, 4, flips[0].ClosedQuantity)
}

func TestIngestRejectsMalformedTransactions(t *testing.T) {
	store := newMemStore()
	r := newTestReconciler(store)

	flips, err := r.Ingest("alice", []models.IncomingTransaction{
		{ItemID: 2, Type: "loan", Quantity: 5, Price: 100},
		{ItemID: 0, Type: "buy", Quantity: 5, Price: 100},
		{ItemID: 2, Type: "buy", Quantity: 0, Price: 100},
	}, 1000)
	require.NoError(t, err)
	assert.Empty(t, flips)
}
