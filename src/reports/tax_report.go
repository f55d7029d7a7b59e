package reports

import (
	"io"

	"github.com/username/cryptotax/backend/src/config"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/utils"
)

const (
	TaxSheet      = "Tax Summary"
	HoldingsSheet = "Holdings"
)

var (
	taxHeader     = []interface{}{"Symbol", "Total Sold", "Total Profit", "Tax", "Net Profit", "Payable Tax", "Last Sell Date"}
	holdingHeader = []interface{}{"Symbol", "Remaining Quantity"}
)

// Options set the rounding applied when a report is rendered.
type Options struct {
	MoneyDecimals    int32
	QuantityDecimals int32
}

// OptionsFromConfig reads the rounding settings from cfg, falling back to
// the defaults when cfg is nil.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	if cfg == nil {
		cfg = config.Default()
	}
	return Options{MoneyDecimals: int32(cfg.ReportDecimals), QuantityDecimals: int32(cfg.QuantityDecimals)}
}

// TaxRows renders the sold symbols and a totals line.
func TaxRows(report models.TaxReport, opts Options) [][]interface{} {
	money := func(v float64) float64 { return utils.RoundFloat(v, opts.MoneyDecimals) }
	qty := func(v float64) float64 { return utils.RoundFloat(v, opts.QuantityDecimals) }

	rows := [][]interface{}{taxHeader}
	for _, r := range report.Sold {
		rows = append(rows, []interface{}{
			r.Symbol,
			qty(r.TotalSold),
			money(r.TotalProfit),
			money(r.Tax),
			money(r.NetProfit),
			money(r.PayableTax),
			utils.FormatDate(r.CreatedAt),
		})
	}
	t := report.Totals
	rows = append(rows, []interface{}{"TOTAL", "", money(t.TotalProfit), money(t.Tax), money(t.NetProfit), money(t.PayableTax), ""})
	return rows
}

// HoldingRows renders the symbols with a remaining position.
func HoldingRows(report models.TaxReport, opts Options) [][]interface{} {
	rows := [][]interface{}{holdingHeader}
	for _, h := range report.Holdings {
		rows = append(rows, []interface{}{h.Symbol, utils.RoundFloat(h.RemainingQty, opts.QuantityDecimals)})
	}
	return rows
}

// WriteReport writes the tax and holdings tables to w.
func WriteReport(w RowWriter, report models.TaxReport, opts Options) error {
	if err := w.WriteRows(TaxSheet, TaxRows(report, opts)); err != nil {
		return err
	}
	return w.WriteRows(HoldingsSheet, HoldingRows(report, opts))
}

// WriteTaxWorkbook renders report as an xlsx workbook into out.
func WriteTaxWorkbook(out io.Writer, report models.TaxReport, opts Options) error {
	wb := NewWorkbook()
	defer wb.Close()

	if err := WriteReport(wb, report, opts); err != nil {
		return err
	}
	_, err := wb.WriteTo(out)
	return err
}
