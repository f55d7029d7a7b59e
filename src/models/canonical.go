// backend/src/models/canonical.go
package models

import "time"

// Side is the direction of a canonical trade. Parsers convert the
// exchange-specific spellings ("buy", "Sell", "BUY") into one of these.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// CanonicalTrade is the unified, exchange-agnostic representation of one
// buy/sell/ledger event. Every parser must produce rows that already satisfy
// Quantity >= 0 and carry numeric price and amount fields.
type CanonicalTrade struct {
	OrderID      string    `json:"Order ID"`
	CreatedAt    time.Time `json:"Created At"`
	Asset        string    `json:"Currency"`
	Side         Side      `json:"Side"`
	Quantity     float64   `json:"Total Quantity"`
	PricePerUnit float64   `json:"Price Per Unit"`
	TotalAmount  float64   `json:"Total Amount"`
	FeeQuote     float64   `json:"fee_inr"`
	NetQuote     float64   `json:"net_inr"`
	TDSAmount    float64   `json:"TDS Amount"`
	Source       string    `json:"source"` // exchange/account tag, e.g. "INSTANT", "SPOT", "Spot"
	HashID       string    `json:"-"`
}

// Price is the result of a historical price lookup. A zero Price is the
// NoData sentinel.
type Price struct {
	Value    float64 `json:"value"`
	Resolved bool    `json:"resolved"`
}

// NoData is returned when no price series or no quote for the day exists.
var NoData = Price{}

// PriceOf wraps a resolved quote.
func PriceOf(v float64) Price {
	return Price{Value: v, Resolved: true}
}

// PricePoint is one row of a persisted price series.
type PricePoint struct {
	Slug         string    `json:"slug"`
	TimeInterval time.Time `json:"time_interval"`
	Price        *float64  `json:"price,omitempty"`
	Close        *float64  `json:"close,omitempty"`
}

// CryptoMaster maps an exchange symbol to the slug of its price series.
type CryptoMaster struct {
	Symbol     string `json:"symbol"`
	Slug       string `json:"slug"`
	IsActive   bool   `json:"is_active"`
	LiveCrypto bool   `json:"live_crypto"`
}
