package quant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TradingConfig collects every tunable trading parameter. The defaults are
// the canonical set; a YAML file can override any field without a rebuild.
type TradingConfig struct {
	// Tax
	GETaxRate       float64 `yaml:"ge_tax_rate"`
	GETaxCap        int64   `yaml:"ge_tax_cap"`
	MinTaxableValue int64   `yaml:"min_taxable_value"`
	TaxExemptItems  []int   `yaml:"tax_exempt_items"`

	// Profit requirements
	MinProfitPerItem    int64   `yaml:"min_profit_per_item"`
	MinMarginPercentage float64 `yaml:"min_margin_percentage"`

	// Price and quantity limits
	MaxPricePerItem int64 `yaml:"max_price_per_item"`
	MinItemValue    int64 `yaml:"min_item_value"`
	MinCashPerSlot  int64 `yaml:"min_cash_per_slot"`
	MaxSlots        int   `yaml:"max_slots"`
	MinSpread       int64 `yaml:"min_spread"`

	// Volume and liquidity
	MinVolumeThreshold  int `yaml:"min_volume_threshold"`
	HighVolumeThreshold int `yaml:"high_volume_threshold"`
	MaxLowVolumeActive  int `yaml:"max_low_volume_active"`

	// Buy limits
	BuyLimitResetHours int `yaml:"buy_limit_reset_hours"`

	// Snapshot windows (5-minute points each)
	BuySnapshotWindow   int     `yaml:"buy_snapshot_window"`
	SellSnapshotWindow  int     `yaml:"sell_snapshot_window"`
	OpportunityWindow   int     `yaml:"opportunity_window"`
	VolatilityThreshold float64 `yaml:"volatility_threshold"`

	// Scoring multipliers
	HighVolumeScoreMultiplier     float64 `yaml:"high_volume_score_multiplier"`
	VeryHighVolumeScoreMultiplier float64 `yaml:"very_high_volume_score_multiplier"`
	HighMarginScoreMultiplier     float64 `yaml:"high_margin_score_multiplier"`
	MidMarginScoreMultiplier      float64 `yaml:"mid_margin_score_multiplier"`
	ExpensiveItemPenalty          float64 `yaml:"expensive_item_penalty"`
	PriorityItemMultiplier        float64 `yaml:"priority_item_multiplier"`

	// Confidence gates per strategy horizon
	MinConfidenceShort float64 `yaml:"min_confidence_short"`
	MinConfidenceLong  float64 `yaml:"min_confidence_long"`

	// Cache lifetimes and session behavior, seconds
	MarketDataTTLSeconds int `yaml:"market_data_ttl_seconds"`
	TimeseriesTTLSeconds int `yaml:"timeseries_ttl_seconds"`
	QueueTTLSeconds      int `yaml:"queue_ttl_seconds"`
	SkipMemorySeconds    int `yaml:"skip_memory_seconds"`

	// Ledger limits
	MaxTransactionHistoryPerFlip int `yaml:"max_transaction_history_per_flip"`

	// Wiki fetch fan-out
	ParallelBatchSize int `yaml:"parallel_batch_size"`
}

// DefaultTradingConfig returns the canonical configuration. The source
// project shipped two diverging sets; the V13 master values are the single
// source of truth here.
func DefaultTradingConfig() *TradingConfig {
	return &TradingConfig{
		GETaxRate:       0.02,
		GETaxCap:        5_000_000,
		MinTaxableValue: 50,
		TaxExemptItems:  taxExemptDefaults(),

		MinProfitPerItem:    1,
		MinMarginPercentage: 0.01,

		MaxPricePerItem: 13_000_000,
		MinItemValue:    100,
		MinCashPerSlot:  10_000,
		MaxSlots:        8,
		MinSpread:       2,

		MinVolumeThreshold:  50_000,
		HighVolumeThreshold: 3_000_000,
		MaxLowVolumeActive:  1,

		BuyLimitResetHours: 4,

		BuySnapshotWindow:   3,
		SellSnapshotWindow:  5,
		OpportunityWindow:   3,
		VolatilityThreshold: 0.15,

		HighVolumeScoreMultiplier:     2.0,
		VeryHighVolumeScoreMultiplier: 5.0,
		HighMarginScoreMultiplier:     1.0,
		MidMarginScoreMultiplier:      1.1,
		ExpensiveItemPenalty:          0.9,
		PriorityItemMultiplier:        1.2,

		MinConfidenceShort: 0.60,
		MinConfidenceLong:  0.65,

		MarketDataTTLSeconds: 30,
		TimeseriesTTLSeconds: 300,
		QueueTTLSeconds:      20,
		SkipMemorySeconds:    600,

		MaxTransactionHistoryPerFlip: 100,

		ParallelBatchSize: 25,
	}
}

// LoadTradingConfig returns the defaults overlaid with the YAML file at
// path. An empty path returns the defaults unchanged.
func LoadTradingConfig(path string) (*TradingConfig, error) {
	cfg := DefaultTradingConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse trading config: %w", err)
	}
	return cfg, nil
}

// IsTaxExempt reports whether sells of the item carry no exchange tax.
func (c *TradingConfig) IsTaxExempt(itemID int) bool {
	for _, id := range c.TaxExemptItems {
		if id == itemID {
			return true
		}
	}
	return false
}

// MinConfidence returns the confidence gate for the horizon.
func (c *TradingConfig) MinConfidence(h Horizon) float64 {
	if h == HorizonLong {
		return c.MinConfidenceLong
	}
	return c.MinConfidenceShort
}

func taxExemptDefaults() []int {
	return []int{
		13190, // Old school bond
		1755,  // Chisel
		2347,  // Hammer
		952,   // Spade
		5325,  // Gardening trowel
		5329,  // Secateurs
		5341,  // Rake
		5343,  // Seed dibber
		1733,  // Needle
		1734,  // Thread
		1735,  // Shears
		1925,  // Bucket
		233,   // Pestle and mortar
		8794,  // Saw
		1785,  // Glassblowing pipe
	}
}
