package models

import "time"

// SymbolTaxResult is one row of FIFO engine output. CreatedAt is the epoch
// millisecond timestamp of the last processed sell, or 0 without sells.
type SymbolTaxResult struct {
	Symbol       string  `json:"symbol"`
	TotalSold    float64 `json:"totalSold"`
	TotalProfit  float64 `json:"totalProfit"`
	Tax          float64 `json:"tax"`
	NetProfit    float64 `json:"netProfit"`
	PayableTax   float64 `json:"payableTax"`
	RemainingQty float64 `json:"remainingQty"`
	CreatedAt    int64   `json:"createdAt"`
}

// TaxTotals are the grand totals over every symbol with a disposal.
type TaxTotals struct {
	TotalProfit float64 `json:"totalProfit"`
	Tax         float64 `json:"tax"`
	NetProfit   float64 `json:"netProfit"`
	PayableTax  float64 `json:"payableTax"`
}

// Holding is the ending position of one symbol.
type Holding struct {
	Symbol       string  `json:"symbol"`
	RemainingQty float64 `json:"remainingQty"`
}

// TaxReport is what the report renderers consume.
type TaxReport struct {
	Results  []SymbolTaxResult `json:"results"`
	Sold     []SymbolTaxResult `json:"sold"`
	Totals   TaxTotals         `json:"totals"`
	Holdings []Holding         `json:"holdings"`
}

// Upload describes one stored export and its normalization outcome.
type Upload struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Filename   string    `json:"filename"`
	TradeCount int       `json:"trade_count"`
	CreatedAt  time.Time `json:"created_at"`
}
