package quant

import (
	"fmt"
	"sort"
	"time"
)

// Horizon selects the trade duration a scan targets.
type Horizon int

const (
	HorizonShort Horizon = iota // 5-minute quick flips
	HorizonLong                 // 8-hour overnight positions
)

// Hours returns the expected hold duration for the horizon.
func (h Horizon) Hours() float64 {
	if h == HorizonLong {
		return 8
	}
	return 5.0 / 60.0
}

// HorizonFromTimeframe maps the client's timeframe (minutes) to a horizon.
func HorizonFromTimeframe(minutes int) Horizon {
	if minutes >= 480 {
		return HorizonLong
	}
	return HorizonShort
}

// PredictorFeatures is the feature vector sent to the success-probability
// model for one candidate trade.
type PredictorFeatures struct {
	BuyPrice           float64 `json:"buy_price"`
	Quantity           float64 `json:"quantity"`
	TradeDurationHours float64 `json:"trade_duration_hours"`
	DayOfWeek          int     `json:"day_of_week"`
	HourOfDay          int     `json:"hour_of_day"`
	StrategyShort      int     `json:"strategy_5m"`
	StrategyLong       int     `json:"strategy_8h"`
	Volatility         float64 `json:"volatility"`
	Momentum           float64 `json:"momentum"`
	MovingAverageRatio float64 `json:"moving_average_ratio"`
}

// Validate rejects feature vectors the model was never trained on.
func (f PredictorFeatures) Validate() error {
	if f.BuyPrice <= 0 {
		return fmt.Errorf("buy_price must be positive, got %v", f.BuyPrice)
	}
	if f.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %v", f.Quantity)
	}
	if f.TradeDurationHours <= 0 {
		return fmt.Errorf("trade_duration_hours must be positive, got %v", f.TradeDurationHours)
	}
	if f.DayOfWeek < 0 || f.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week out of range: %d", f.DayOfWeek)
	}
	if f.HourOfDay < 0 || f.HourOfDay > 23 {
		return fmt.Errorf("hour_of_day out of range: %d", f.HourOfDay)
	}
	return nil
}

// PredictFunc scores the success probability of one candidate trade.
// Implementations may fail; the scanner degrades to a neutral confidence.
type PredictFunc func(f PredictorFeatures) (float64, error)

// NeutralConfidence is used when no prediction is available.
const NeutralConfidence = 0.5

// ItemView is everything the scanner knows about one tradeable item at scan
// time.
type ItemView struct {
	ID           int
	Name         string
	BuyLimit     int
	Priority     int
	BuyPrice     int64
	SellPrice    int64
	HourlyVolume int64
	Features     Features
}

// Candidate is one scored buy suggestion.
type Candidate struct {
	ItemID          int
	Name            string
	BuyPrice        int64
	SellPrice       int64
	Quantity        int
	ProfitPerUnit   int64
	ProjectedProfit int64
	HourlyVolume    int64
	Confidence      float64
	Score           float64
}

// ScanInput carries the per-request context of one candidate scan.
type ScanInput struct {
	CashPerSlot    int64
	RecentlyBought map[int]int // item id -> quantity bought inside the limit window
	Excluded       map[int]bool
	Horizon        Horizon
	Now            time.Time
}

// CashPerSlot splits available cash evenly across empty exchange slots.
func CashPerSlot(cash int64, emptySlots int) int64 {
	if emptySlots <= 0 {
		return 0
	}
	return cash / int64(emptySlots)
}

// BuildCandidates filters and scores the item views into a ranked candidate
// list. Every rejection rule is applied per item; items never fail the whole
// scan. A nil predict degrades all confidences to neutral.
func BuildCandidates(views []ItemView, in ScanInput, cfg *TradingConfig, predict PredictFunc) []Candidate {
	candidates := make([]Candidate, 0, len(views))
	for _, v := range views {
		c, ok := evaluate(v, in, cfg, predict)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}
	SortCandidates(candidates)
	return candidates
}

func evaluate(v ItemView, in ScanInput, cfg *TradingConfig, predict PredictFunc) (Candidate, bool) {
	if in.Excluded[v.ID] {
		return Candidate{}, false
	}
	if v.BuyPrice <= 0 || v.SellPrice <= 0 {
		return Candidate{}, false
	}
	// The absolute spread floor holds no matter how large the volume is.
	if v.SellPrice-v.BuyPrice < cfg.MinSpread {
		return Candidate{}, false
	}
	if v.BuyPrice < cfg.MinItemValue || v.BuyPrice > in.CashPerSlot {
		return Candidate{}, false
	}
	if v.HourlyVolume < int64(cfg.MinVolumeThreshold) {
		return Candidate{}, false
	}

	remaining := v.BuyLimit - in.RecentlyBought[v.ID]
	if remaining <= 0 {
		return Candidate{}, false
	}
	quantity := int(in.CashPerSlot / v.BuyPrice)
	if quantity > remaining {
		quantity = remaining
	}
	if quantity <= 0 {
		return Candidate{}, false
	}

	netSell := int64(float64(v.SellPrice) * (1 - cfg.GETaxRate))
	if cfg.IsTaxExempt(v.ID) {
		netSell = v.SellPrice
	}
	profit := netSell - v.BuyPrice
	if profit < cfg.MinProfitPerItem {
		return Candidate{}, false
	}
	margin := float64(profit) / float64(v.BuyPrice)
	if margin < cfg.MinMarginPercentage {
		return Candidate{}, false
	}

	confidence := NeutralConfidence
	if predict != nil {
		features := PredictorFeatures{
			BuyPrice:           float64(v.BuyPrice),
			Quantity:           float64(quantity),
			TradeDurationHours: in.Horizon.Hours(),
			DayOfWeek:          int(in.Now.UTC().Weekday()),
			HourOfDay:          in.Now.UTC().Hour(),
			Volatility:         v.Features.Volatility,
			Momentum:           v.Features.Momentum,
			MovingAverageRatio: v.Features.MovingAverageRatio,
		}
		if in.Horizon == HorizonLong {
			features.StrategyLong = 1
		} else {
			features.StrategyShort = 1
		}
		if err := features.Validate(); err == nil {
			if p, err := predict(features); err == nil {
				// The gate only applies to real predictions; a model outage
				// must not empty the scan.
				if p < cfg.MinConfidence(in.Horizon) {
					return Candidate{}, false
				}
				confidence = p
			}
		}
	}

	c := Candidate{
		ItemID:          v.ID,
		Name:            v.Name,
		BuyPrice:        v.BuyPrice,
		SellPrice:       v.SellPrice,
		Quantity:        quantity,
		ProfitPerUnit:   profit,
		ProjectedProfit: profit * int64(quantity),
		HourlyVolume:    v.HourlyVolume,
		Confidence:      confidence,
	}
	c.Score = scoreCandidate(c, v, cfg)
	return c, true
}

func scoreCandidate(c Candidate, v ItemView, cfg *TradingConfig) float64 {
	score := float64(c.ProfitPerUnit) * float64(c.HourlyVolume)

	if c.HourlyVolume >= 3*int64(cfg.HighVolumeThreshold) {
		score *= cfg.VeryHighVolumeScoreMultiplier
	} else if c.HourlyVolume >= int64(cfg.HighVolumeThreshold) {
		score *= cfg.HighVolumeScoreMultiplier
	}

	margin := float64(c.ProfitPerUnit) / float64(c.BuyPrice)
	if margin > 0.10 {
		score *= cfg.HighMarginScoreMultiplier
	} else if margin > 0.05 {
		score *= cfg.MidMarginScoreMultiplier
	}

	if c.BuyPrice > cfg.MaxPricePerItem {
		score *= cfg.ExpensiveItemPenalty
	}
	if v.Priority >= 9 {
		score *= cfg.PriorityItemMultiplier
	}

	// Neutral confidence leaves the score untouched.
	score *= 0.5 + c.Confidence
	return score
}

// SortCandidates orders candidates best first with a deterministic total
// order: score, then confidence, then item id.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.ItemID < b.ItemID
	})
}
