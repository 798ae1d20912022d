package models

import (
	"time"
)

// Flip is the aggregate open/closed position for one item for one user.
// Created by the first buy transaction for an item with no open flip,
// mutated by every subsequent matching transaction, never deleted.
type Flip struct {
	ID                 string `json:"id" gorm:"primaryKey;size:36"`
	AccountDisplayName string `json:"account_display_name" gorm:"index:idx_flips_user_item;size:64;not null"`
	ItemID             int    `json:"item_id" gorm:"index:idx_flips_user_item;not null"`
	ItemName           string `json:"item_name"`
	OpenedTime         int64  `json:"opened_time"`
	OpenedQuantity     int    `json:"opened_quantity"`
	Spent              int64  `json:"spent"`
	ClosedTime         int64  `json:"closed_time"`
	ClosedQuantity     int    `json:"closed_quantity"`
	ReceivedPostTax    int64  `json:"received_post_tax"`
	TaxPaid            int64  `json:"tax_paid"`
	Profit             int64  `json:"profit"`
	IsClosed           bool   `json:"is_closed" gorm:"index"`

	// Version backs optimistic concurrency on read-modify-write; the store
	// rejects saves carrying a stale version.
	Version int64 `json:"-"`

	Transactions []FlipTransaction `json:"transactions_history" gorm:"foreignKey:FlipID;references:ID"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FlipTransaction is one recorded buy or sell execution, append-only and
// de-duplicated by ID within a flip.
type FlipTransaction struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	FlipID      string `json:"-" gorm:"index;size:36"`
	ItemID      int    `json:"-"`
	Type        string `json:"type"` // buy, sell
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	AmountSpent int64  `json:"amount_spent"`
	Time        int64  `json:"time"` // unix seconds
}

// IncomingTransaction is the wire shape of one transaction reported by the
// client. Fields may be missing; the reconciler normalizes them.
type IncomingTransaction struct {
	ID          string      `json:"id"`
	ItemID      int         `json:"item_id"`
	ItemName    string      `json:"item_name"`
	Type        string      `json:"type"`
	Quantity    int         `json:"quantity"`
	Price       int64       `json:"price"`
	AmountSpent int64       `json:"amount_spent"`
	Time        interface{} `json:"time"` // unix seconds or millis; normalized on ingest
}

// InventoryItem is one stack in the client's reported inventory.
type InventoryItem struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Offer is one reported exchange slot.
type Offer struct {
	ItemID          int    `json:"item_id"`
	Status          string `json:"status"` // empty, active, completed, partial
	Slot            int    `json:"slot"`
	BuySell         string `json:"buy_sell"` // buy, sell
	CollectedAmount int    `json:"collected_amount"`
}

// SuggestionRequest is the inbound body of POST /suggestion.
type SuggestionRequest struct {
	DisplayName    string          `json:"display_name"`
	Inventory      []InventoryItem `json:"inventory"`
	Offers         []Offer         `json:"offers"`
	Timeframe      int             `json:"timeframe"` // minutes; 5 = short horizon, 480 = long
	BlockedItems   []int           `json:"blocked_items"`
	SkippedItems   []int           `json:"skipped_items"`
	SellOnlyMode   bool            `json:"sell_only_mode"`
	SkipSuggestion bool            `json:"skip_suggestion"`
}

// Suggestion is the outbound action recommendation. Always well-formed;
// when nothing is actionable Type is "wait" and Message says why.
type Suggestion struct {
	Type     string `json:"type"` // buy, sell, collect, wait
	ItemID   int    `json:"item_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Price    int64  `json:"price,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Slot     int    `json:"slot,omitempty"`
	Message  string `json:"message"`
}

// PriceLookupRequest is the inbound body of POST /prices.
type PriceLookupRequest struct {
	ItemID int    `json:"item_id"`
	Type   string `json:"type"` // buy, sell
}

// PriceLookupResponse is the manual price suggestion for one item.
type PriceLookupResponse struct {
	ItemID         int    `json:"item_id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	SuggestedPrice int64  `json:"suggested_price"`
}
