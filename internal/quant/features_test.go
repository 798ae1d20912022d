package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steadyPoints(n int, low, high int64) []PricePoint {
	pts := make([]PricePoint, n)
	for i := range pts {
		pts[i] = PricePoint{
			Timestamp:       int64(i * 300),
			AvgLowPrice:     low,
			AvgHighPrice:    high,
			HighPriceVolume: 10_000,
			LowPriceVolume:  10_000,
		}
	}
	return pts
}

func TestPricesFromSnapshots(t *testing.T) {
	cfg := DefaultTradingConfig()

	t.Run("steady market quotes inside the spread", func(t *testing.T) {
		quote, ok := PricesFromSnapshots(steadyPoints(12, 100, 120), cfg)
		require.True(t, ok)
		assert.Equal(t, int64(101), quote.BuyPrice)
		assert.Equal(t, int64(119), quote.SellPrice)
		assert.False(t, quote.Opportunity)
	})

	t.Run("too few points", func(t *testing.T) {
		_, ok := PricesFromSnapshots(steadyPoints(2, 100, 120), cfg)
		assert.False(t, ok)
	})

	t.Run("crash chases the new low", func(t *testing.T) {
		pts := steadyPoints(12, 100, 120)
		// Last three points collapse well past the volatility threshold.
		for i := 9; i < 12; i++ {
			pts[i].AvgLowPrice = 70
			pts[i].AvgHighPrice = 90
		}
		quote, ok := PricesFromSnapshots(pts, cfg)
		require.True(t, ok)
		assert.True(t, quote.Opportunity)
		assert.Equal(t, int64(71), quote.BuyPrice)
	})

	t.Run("spike chases the new high", func(t *testing.T) {
		pts := steadyPoints(12, 100, 120)
		for i := 9; i < 12; i++ {
			pts[i].AvgHighPrice = 150
		}
		quote, ok := PricesFromSnapshots(pts, cfg)
		require.True(t, ok)
		assert.True(t, quote.Opportunity)
		assert.Equal(t, int64(149), quote.SellPrice)
	})
}

func TestHourlyVolume(t *testing.T) {
	assert.Zero(t, HourlyVolume(nil))

	// Five points at 20k each extrapolate to 20k * 12 per hour.
	pts := steadyPoints(5, 100, 120)
	assert.Equal(t, int64(240_000), HourlyVolume(pts))
}

func TestComputeFeatures(t *testing.T) {
	t.Run("flat series", func(t *testing.T) {
		f := ComputeFeatures(steadyPoints(10, 100, 120))
		assert.Zero(t, f.Volatility)
		assert.Zero(t, f.Momentum)
		assert.InDelta(t, 1.0, f.MovingAverageRatio, 1e-9)
	})

	t.Run("rising series has positive momentum", func(t *testing.T) {
		pts := steadyPoints(10, 100, 120)
		for i := range pts {
			pts[i].AvgLowPrice += int64(i * 5)
			pts[i].AvgHighPrice += int64(i * 5)
		}
		f := ComputeFeatures(pts)
		assert.Greater(t, f.Momentum, 0.0)
		assert.Greater(t, f.MovingAverageRatio, 1.0)
		assert.Greater(t, f.Volatility, 0.0)
	})

	t.Run("too few usable points", func(t *testing.T) {
		f := ComputeFeatures(steadyPoints(1, 100, 120))
		assert.Equal(t, Features{MovingAverageRatio: 1}, f)
	})
}
