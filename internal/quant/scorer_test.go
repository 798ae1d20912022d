package quant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanInput(cashPerSlot int64) ScanInput {
	return ScanInput{
		CashPerSlot:    cashPerSlot,
		RecentlyBought: map[int]int{},
		Excluded:       map[int]bool{},
		Horizon:        HorizonShort,
		Now:            time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC),
	}
}

func liquidView(id int) ItemView {
	return ItemView{
		ID:           id,
		Name:         "Cannonball",
		BuyLimit:     11000,
		BuyPrice:     160,
		SellPrice:    170,
		HourlyVolume: 400_000,
	}
}

func TestBuildCandidates(t *testing.T) {
	cfg := DefaultTradingConfig()

	t.Run("accepts a liquid profitable item", func(t *testing.T) {
		out := BuildCandidates([]ItemView{liquidView(2)}, scanInput(100_000), cfg, nil)
		require.Len(t, out, 1)
		c := out[0]
		assert.Equal(t, 2, c.ItemID)
		// 100_000 / 160 = 625, under the remaining limit.
		assert.Equal(t, 625, c.Quantity)
		// Net sell floor(170 * 0.98) = 166, profit 6.
		assert.Equal(t, int64(6), c.ProfitPerUnit)
		assert.Equal(t, NeutralConfidence, c.Confidence)
	})

	t.Run("spread floor rejects regardless of volume", func(t *testing.T) {
		v := liquidView(2)
		v.BuyPrice = 169
		v.SellPrice = 170
		v.HourlyVolume = 50_000_000
		out := BuildCandidates([]ItemView{v}, scanInput(100_000), cfg, nil)
		assert.Empty(t, out)
	})

	t.Run("volume gate", func(t *testing.T) {
		v := liquidView(2)
		v.HourlyVolume = int64(cfg.MinVolumeThreshold) - 1
		out := BuildCandidates([]ItemView{v}, scanInput(100_000), cfg, nil)
		assert.Empty(t, out)
	})

	t.Run("exhausted buy limit", func(t *testing.T) {
		in := scanInput(100_000)
		in.RecentlyBought[2] = 11000
		out := BuildCandidates([]ItemView{liquidView(2)}, in, cfg, nil)
		assert.Empty(t, out)
	})

	t.Run("quantity capped by remaining limit", func(t *testing.T) {
		in := scanInput(100_000)
		in.RecentlyBought[2] = 10_900
		out := BuildCandidates([]ItemView{liquidView(2)}, in, cfg, nil)
		require.Len(t, out, 1)
		assert.Equal(t, 100, out[0].Quantity)
	})

	t.Run("excluded item", func(t *testing.T) {
		in := scanInput(100_000)
		in.Excluded[2] = true
		out := BuildCandidates([]ItemView{liquidView(2)}, in, cfg, nil)
		assert.Empty(t, out)
	})

	t.Run("too cheap and too expensive for the slot", func(t *testing.T) {
		cheap := liquidView(2)
		cheap.BuyPrice = 50
		cheap.SellPrice = 60
		rich := liquidView(3)
		rich.BuyPrice = 200_000
		rich.SellPrice = 210_000
		out := BuildCandidates([]ItemView{cheap, rich}, scanInput(100_000), cfg, nil)
		assert.Empty(t, out)
	})

	t.Run("predictor below gate rejects", func(t *testing.T) {
		predict := func(PredictorFeatures) (float64, error) { return 0.3, nil }
		out := BuildCandidates([]ItemView{liquidView(2)}, scanInput(100_000), cfg, predict)
		assert.Empty(t, out)
	})

	t.Run("predictor failure degrades to neutral", func(t *testing.T) {
		predict := func(PredictorFeatures) (float64, error) { return 0, errors.New("model offline") }
		out := BuildCandidates([]ItemView{liquidView(2)}, scanInput(100_000), cfg, predict)
		require.Len(t, out, 1)
		assert.Equal(t, NeutralConfidence, out[0].Confidence)
	})

	t.Run("confidence scales the score", func(t *testing.T) {
		predict := func(PredictorFeatures) (float64, error) { return 0.9, nil }
		confident := BuildCandidates([]ItemView{liquidView(2)}, scanInput(100_000), cfg, predict)
		neutral := BuildCandidates([]ItemView{liquidView(2)}, scanInput(100_000), cfg, nil)
		require.Len(t, confident, 1)
		require.Len(t, neutral, 1)
		assert.Greater(t, confident[0].Score, neutral[0].Score)
	})
}

func TestSortCandidates(t *testing.T) {
	cands := []Candidate{
		{ItemID: 3, Score: 10, Confidence: 0.5},
		{ItemID: 2, Score: 10, Confidence: 0.5},
		{ItemID: 1, Score: 10, Confidence: 0.9},
		{ItemID: 4, Score: 50, Confidence: 0.5},
	}
	SortCandidates(cands)

	ids := []int{cands[0].ItemID, cands[1].ItemID, cands[2].ItemID, cands[3].ItemID}
	assert.Equal(t, []int{4, 1, 2, 3}, ids)
}

func TestPredictorFeaturesValidate(t *testing.T) {
	valid := PredictorFeatures{
		BuyPrice:           160,
		Quantity:           100,
		TradeDurationHours: 0.1,
		DayOfWeek:          3,
		HourOfDay:          14,
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.DayOfWeek = 7
	assert.Error(t, bad.Validate())

	bad = valid
	bad.HourOfDay = 24
	assert.Error(t, bad.Validate())

	bad = valid
	bad.BuyPrice = 0
	assert.Error(t, bad.Validate())
}

func TestCashPerSlot(t *testing.T) {
	assert.Equal(t, int64(125_000), CashPerSlot(1_000_000, 8))
	assert.Equal(t, int64(333_333), CashPerSlot(1_000_000, 3))
	assert.Zero(t, CashPerSlot(1_000_000, 0))
}

func TestHorizonFromTimeframe(t *testing.T) {
	assert.Equal(t, HorizonShort, HorizonFromTimeframe(5))
	assert.Equal(t, HorizonLong, HorizonFromTimeframe(480))
}
