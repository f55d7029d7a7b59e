// backend/src/processors/report_processor.go
package processors

import "github.com/username/cryptotax/backend/src/models"

type ReportProcessor struct{}

func NewReportProcessor() *ReportProcessor {
	return &ReportProcessor{}
}

// Aggregate totals the results of symbols with a disposal and lists the
// symbols that still hold a position. Results are not recomputed.
func (p *ReportProcessor) Aggregate(results []models.SymbolTaxResult) models.TaxReport {
	report := models.TaxReport{
		Results:  results,
		Sold:     []models.SymbolTaxResult{},
		Holdings: []models.Holding{},
	}
	if report.Results == nil {
		report.Results = []models.SymbolTaxResult{}
	}

	for _, r := range results {
		if r.TotalSold > 0 {
			report.Sold = append(report.Sold, r)
			report.Totals.TotalProfit += r.TotalProfit
			report.Totals.Tax += r.Tax
			report.Totals.NetProfit += r.NetProfit
			report.Totals.PayableTax += r.PayableTax
		}
		if r.RemainingQty > 0 {
			report.Holdings = append(report.Holdings, models.Holding{Symbol: r.Symbol, RemainingQty: r.RemainingQty})
		}
	}
	return report
}
