package flipper

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"osrs-flipper/internal/models"
	"osrs-flipper/internal/quant"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reconciler folds client-reported transactions into the flip ledger.
// Ingestion is idempotent: transaction ids already present on a flip are
// skipped, and every flip's totals are recomputed from its full history, so
// replaying the same batch leaves the ledger unchanged.
type Reconciler struct {
	store FlipStore
	cfg   *quant.TradingConfig
	log   *logrus.Logger
}

func NewReconciler(store FlipStore, cfg *quant.TradingConfig, log *logrus.Logger) *Reconciler {
	return &Reconciler{store: store, cfg: cfg, log: log}
}

// Ingest merges the incoming transactions into the user's flips and returns
// the flips that changed. A concurrent writer invalidating the version check
// triggers one re-read and retry of the whole batch.
func (r *Reconciler) Ingest(displayName string, incoming []models.IncomingTransaction, nowUnix int64) ([]models.Flip, error) {
	grouped := make(map[int][]models.FlipTransaction)
	for _, in := range incoming {
		tx, ok := r.normalize(in, nowUnix)
		if !ok {
			continue
		}
		grouped[tx.ItemID] = append(grouped[tx.ItemID], tx)
	}
	names := make(map[int]string)
	for _, in := range incoming {
		if in.ItemName != "" {
			names[in.ItemID] = in.ItemName
		}
	}

	updated, err := r.ingestOnce(displayName, grouped, names)
	if errors.Is(err, models.ErrVersionConflict) {
		r.log.WithField("user", displayName).Info("flip version conflict, retrying ingest")
		updated, err = r.ingestOnce(displayName, grouped, names)
	}
	if err != nil {
		return nil, err
	}

	flips := make([]models.Flip, len(updated))
	for i, f := range updated {
		flips[i] = *f
	}
	return flips, nil
}

func (r *Reconciler) ingestOnce(displayName string, grouped map[int][]models.FlipTransaction, names map[int]string) ([]*models.Flip, error) {
	itemIDs := make([]int, 0, len(grouped))
	for id := range grouped {
		itemIDs = append(itemIDs, id)
	}
	sort.Ints(itemIDs)

	var updated []*models.Flip
	for _, itemID := range itemIDs {
		txs := grouped[itemID]

		flip, err := r.store.OpenFlip(displayName, itemID)
		if err != nil {
			return nil, err
		}
		if flip == nil {
			if !hasBuy(txs) {
				// A sell with no open position cannot be matched to a cost.
				r.log.WithFields(logrus.Fields{
					"user":    displayName,
					"item_id": itemID,
				}).Warn("dropping sell with no open flip")
				continue
			}
			flip = &models.Flip{
				ID:                 uuid.NewString(),
				AccountDisplayName: displayName,
				ItemID:             itemID,
			}
		}
		if name := names[itemID]; name != "" {
			flip.ItemName = name
		}

		if !mergeTransactions(flip, txs, r.cfg.MaxTransactionHistoryPerFlip) {
			continue // every transaction was a duplicate
		}
		r.recompute(flip)
		updated = append(updated, flip)
	}

	if len(updated) == 0 {
		return nil, nil
	}
	if err := r.store.SaveFlips(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// normalize fills the gaps in a client-reported transaction. Times may be
// seconds or milliseconds; anything implausibly large is treated as millis.
func (r *Reconciler) normalize(in models.IncomingTransaction, nowUnix int64) (models.FlipTransaction, bool) {
	txType := strings.ToLower(strings.TrimSpace(in.Type))
	if txType != quant.TxBuy && txType != quant.TxSell {
		return models.FlipTransaction{}, false
	}
	if in.ItemID <= 0 || in.Quantity <= 0 || in.Price < 0 {
		return models.FlipTransaction{}, false
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	ts := parseTime(in.Time)
	if ts <= 0 {
		ts = nowUnix
	}
	if ts > 100_000_000_000 { // milliseconds
		ts /= 1000
	}

	spent := in.AmountSpent
	if spent == 0 && txType == quant.TxBuy {
		spent = in.Price * int64(in.Quantity)
	}

	return models.FlipTransaction{
		ID:          id,
		ItemID:      in.ItemID,
		Type:        txType,
		Quantity:    in.Quantity,
		Price:       in.Price,
		AmountSpent: spent,
		Time:        ts,
	}, true
}

func parseTime(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// mergeTransactions appends the new transactions, skipping ids the flip
// already holds, and reports whether anything changed. History is capped at
// maxHistory entries, oldest dropped first.
func mergeTransactions(flip *models.Flip, txs []models.FlipTransaction, maxHistory int) bool {
	seen := make(map[string]bool, len(flip.Transactions))
	for _, tx := range flip.Transactions {
		seen[tx.ID] = true
	}

	changed := false
	for _, tx := range txs {
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		tx.FlipID = flip.ID
		flip.Transactions = append(flip.Transactions, tx)
		changed = true
	}
	if !changed {
		return false
	}

	sort.SliceStable(flip.Transactions, func(i, j int) bool {
		a, b := flip.Transactions[i], flip.Transactions[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	if len(flip.Transactions) > maxHistory {
		flip.Transactions = flip.Transactions[len(flip.Transactions)-maxHistory:]
	}
	return true
}

// recompute derives every aggregate field from the transaction history.
func (r *Reconciler) recompute(flip *models.Flip) {
	flip.OpenedTime = 0
	flip.OpenedQuantity = 0
	flip.Spent = 0
	flip.ClosedTime = 0

	history := make([]quant.LedgerEntry, 0, len(flip.Transactions))
	for _, tx := range flip.Transactions {
		history = append(history, quant.LedgerEntry{
			ID:       tx.ID,
			Type:     tx.Type,
			Quantity: tx.Quantity,
			Price:    tx.Price,
			Spent:    tx.AmountSpent,
			Time:     tx.Time,
		})
		switch tx.Type {
		case quant.TxBuy:
			if flip.OpenedTime == 0 || tx.Time < flip.OpenedTime {
				flip.OpenedTime = tx.Time
			}
			flip.OpenedQuantity += tx.Quantity
			flip.Spent += tx.AmountSpent
		case quant.TxSell:
			if tx.Time > flip.ClosedTime {
				flip.ClosedTime = tx.Time
			}
		}
	}

	res := quant.ReplayFIFO(r.cfg, flip.ItemID, history)
	flip.ClosedQuantity = res.MatchedQuantity
	flip.ReceivedPostTax = res.ReceivedPostTax
	flip.TaxPaid = res.TaxPaid
	flip.Profit = res.Profit
	flip.IsClosed = flip.OpenedQuantity > 0 && flip.ClosedQuantity >= flip.OpenedQuantity
	if !flip.IsClosed {
		flip.ClosedTime = 0
	}
}

func hasBuy(txs []models.FlipTransaction) bool {
	for _, tx := range txs {
		if tx.Type == quant.TxBuy {
			return true
		}
	}
	return false
}
