package quant

import "math"

// PricePoint is one 5-minute timeseries snapshot for an item.
type PricePoint struct {
	Timestamp       int64 `json:"timestamp"`
	AvgHighPrice    int64 `json:"avgHighPrice"`
	AvgLowPrice     int64 `json:"avgLowPrice"`
	HighPriceVolume int64 `json:"highPriceVolume"`
	LowPriceVolume  int64 `json:"lowPriceVolume"`
}

// PriceQuote is the actionable buy/sell price pair derived from recent
// snapshots. Opportunity marks quotes taken from a short-term dislocation
// rather than the steady windows.
type PriceQuote struct {
	BuyPrice    int64
	SellPrice   int64
	Opportunity bool
}

// Features are the model inputs derived from an item's timeseries.
type Features struct {
	Volatility         float64
	Momentum           float64
	MovingAverageRatio float64
}

// PricesFromSnapshots derives a quote from the most recent snapshots. The
// buy side undercuts the minimum instant-sell price of the last few points
// by one; the sell side sits one under the maximum instant-buy price of a
// slightly longer window. When the newest points have moved more than the
// volatility threshold away from those anchors, the quote chases the move
// instead and is flagged as an opportunity. Returns false when there is not
// enough usable data.
func PricesFromSnapshots(points []PricePoint, cfg *TradingConfig) (PriceQuote, bool) {
	lows := make([]int64, 0, len(points))
	highs := make([]int64, 0, len(points))
	for _, p := range points {
		if p.AvgLowPrice > 0 {
			lows = append(lows, p.AvgLowPrice)
		}
		if p.AvgHighPrice > 0 {
			highs = append(highs, p.AvgHighPrice)
		}
	}
	if len(lows) < cfg.BuySnapshotWindow || len(highs) < cfg.SellSnapshotWindow {
		return PriceQuote{}, false
	}

	floor := minInt64(lows[len(lows)-cfg.BuySnapshotWindow:])
	ceiling := maxInt64(highs[len(highs)-cfg.SellSnapshotWindow:])

	quote := PriceQuote{BuyPrice: floor + 1, SellPrice: ceiling - 1}

	// Dislocation check: compare the newest points against the baseline just
	// before them. A move past the threshold means the steady anchors are
	// stale, so the quote chases the move.
	if w := cfg.OpportunityWindow; len(lows) >= cfg.BuySnapshotWindow+w && len(highs) >= cfg.SellSnapshotWindow+w {
		baseFloor := minInt64(lows[len(lows)-cfg.BuySnapshotWindow-w : len(lows)-w])
		baseCeiling := maxInt64(highs[len(highs)-cfg.SellSnapshotWindow-w : len(highs)-w])
		recentLow := minInt64(lows[len(lows)-w:])
		recentHigh := maxInt64(highs[len(highs)-w:])
		if drop := float64(baseFloor-recentLow) / float64(baseFloor); drop >= cfg.VolatilityThreshold {
			quote.BuyPrice = recentLow + 1
			quote.Opportunity = true
		}
		if spike := float64(recentHigh-baseCeiling) / float64(baseCeiling); spike >= cfg.VolatilityThreshold {
			quote.SellPrice = recentHigh - 1
			quote.Opportunity = true
		}
	}

	if quote.BuyPrice <= 0 || quote.SellPrice <= 0 {
		return PriceQuote{}, false
	}
	return quote, true
}

// HourlyVolume extrapolates trade volume per hour from the latest 5-minute
// snapshots.
func HourlyVolume(points []PricePoint) int64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	window := 5
	if n < window {
		window = n
	}
	var sum int64
	for _, p := range points[n-window:] {
		sum += p.HighPriceVolume + p.LowPriceVolume
	}
	return sum / int64(window) * 12
}

// ComputeFeatures derives model features from an item's timeseries.
// Volatility is the coefficient of variation of mid prices, momentum the
// relative change from the oldest to the newest mid, and the MA ratio the
// last mid over the series mean.
func ComputeFeatures(points []PricePoint) Features {
	mids := make([]float64, 0, len(points))
	for _, p := range points {
		if m := midPrice(p); m > 0 {
			mids = append(mids, m)
		}
	}
	if len(mids) < 2 {
		return Features{MovingAverageRatio: 1}
	}

	var sum float64
	for _, m := range mids {
		sum += m
	}
	mean := sum / float64(len(mids))

	var variance float64
	for _, m := range mids {
		d := m - mean
		variance += d * d
	}
	variance /= float64(len(mids))

	return Features{
		Volatility:         math.Sqrt(variance) / mean,
		Momentum:           (mids[len(mids)-1] - mids[0]) / mids[0],
		MovingAverageRatio: mids[len(mids)-1] / mean,
	}
}

func midPrice(p PricePoint) float64 {
	switch {
	case p.AvgHighPrice > 0 && p.AvgLowPrice > 0:
		return float64(p.AvgHighPrice+p.AvgLowPrice) / 2
	case p.AvgHighPrice > 0:
		return float64(p.AvgHighPrice)
	case p.AvgLowPrice > 0:
		return float64(p.AvgLowPrice)
	default:
		return 0
	}
}

func minInt64(v []int64) int64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt64(v []int64) int64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
