package quant

import "sort"

// Transaction types as they appear in flip histories.
const (
	TxBuy  = "buy"
	TxSell = "sell"
)

// LedgerEntry is one executed buy or sell in a flip's history, in the
// minimal shape the replay needs.
type LedgerEntry struct {
	ID       string
	Type     string
	Quantity int
	Price    int64
	Spent    int64
	Time     int64
}

// FIFOResult is the outcome of replaying one flip's history.
type FIFOResult struct {
	MatchedCost     int64
	MatchedQuantity int
	ReceivedPostTax int64
	TaxPaid         int64
	Profit          int64
}

type lot struct {
	quantity int
	cost     int64
}

// ReplayFIFO recomputes realized profit for one item's transaction history
// by matching sells against buy lots oldest-first. A sell larger than the
// open lots is matched only up to what the lots cover. The result is a pure
// function of the history, so re-running after new transactions arrive
// always yields consistent totals.
func ReplayFIFO(cfg *TradingConfig, itemID int, history []LedgerEntry) FIFOResult {
	entries := make([]LedgerEntry, len(history))
	copy(entries, history)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time < entries[j].Time
		}
		return entries[i].ID < entries[j].ID
	})

	var res FIFOResult
	var lots []lot
	for _, e := range entries {
		switch e.Type {
		case TxBuy:
			if e.Quantity > 0 {
				lots = append(lots, lot{quantity: e.Quantity, cost: e.Spent})
			}
		case TxSell:
			remaining := e.Quantity
			var matched int
			var matchedCost int64
			for remaining > 0 && len(lots) > 0 {
				l := &lots[0]
				if l.quantity <= remaining {
					matchedCost += l.cost
					matched += l.quantity
					remaining -= l.quantity
					lots = lots[1:]
				} else {
					unitCost := l.cost / int64(l.quantity)
					matchedCost += unitCost * int64(remaining)
					l.cost -= unitCost * int64(remaining)
					l.quantity -= remaining
					matched += remaining
					remaining = 0
				}
			}
			if matched == 0 {
				continue
			}
			gross := e.Price * int64(matched)
			tax := CalculateTax(cfg, itemID, e.Price, matched)
			res.MatchedCost += matchedCost
			res.MatchedQuantity += matched
			res.ReceivedPostTax += gross - tax
			res.TaxPaid += tax
		}
	}
	res.Profit = res.ReceivedPostTax - res.MatchedCost
	return res
}
