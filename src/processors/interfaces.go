package processors

import (
	"github.com/username/cryptotax/backend/src/models"
)

// TaxEngine computes per-symbol realized profit and tax.
type TaxEngine interface {
	Process(trades []models.CanonicalTrade) []models.SymbolTaxResult
}

// ReportAggregator totals engine results for presentation.
type ReportAggregator interface {
	Aggregate(results []models.SymbolTaxResult) models.TaxReport
}

// TradeDeduplicator assigns hash ids and removes duplicate trades.
type TradeDeduplicator interface {
	Process(trades []models.CanonicalTrade) []models.CanonicalTrade
}

var (
	_ TaxEngine         = (*TaxProcessor)(nil)
	_ ReportAggregator  = (*ReportProcessor)(nil)
	_ TradeDeduplicator = (*TransactionProcessor)(nil)
)
