package flipper

import (
	"time"

	"osrs-flipper/internal/quant"

	"github.com/sirupsen/logrus"
)

// Tracker answers how much of each item a user bought inside the exchange
// buy-limit window, derived from flip transaction histories.
type Tracker struct {
	store FlipStore
	cfg   *quant.TradingConfig
	log   *logrus.Logger
}

func NewTracker(store FlipStore, cfg *quant.TradingConfig, log *logrus.Logger) *Tracker {
	return &Tracker{store: store, cfg: cfg, log: log}
}

// RecentlyBought sums buy quantities per item over the rolling limit window.
// A buy at exactly the window boundary still counts. On a store failure the
// map is empty, which errs toward suggesting; the exchange itself enforces
// the real limit.
func (t *Tracker) RecentlyBought(displayName string, now time.Time) map[int]int {
	bought := make(map[int]int)

	flips, err := t.store.UserFlips(displayName)
	if err != nil {
		t.log.WithError(err).WithField("user", displayName).Warn("buy limit lookup failed")
		return bought
	}

	cutoff := now.Add(-time.Duration(t.cfg.BuyLimitResetHours) * time.Hour).Unix()
	for _, flip := range flips {
		for _, tx := range flip.Transactions {
			if tx.Type == quant.TxBuy && tx.Time >= cutoff {
				bought[flip.ItemID] += tx.Quantity
			}
		}
	}
	return bought
}
