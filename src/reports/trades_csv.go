package reports

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/security/validation"
)

// TradeCSVHeader is the unified trade layout. Its leading columns match the
// ledger-CSV import, so an export can be uploaded again as source
// "instant"; Fee, Net Amount and Source are informational and are not
// read back.
var TradeCSVHeader = []string{
	"Order ID", "Created At", "Currency", "Side", "Total Quantity", "Price Per Unit",
	"Total Amount", "TDS Amount", "Status", "Fee", "Net Amount", "Source",
}

// WriteTradesCSV writes canonical trades in the unified layout.
func WriteTradesCSV(out io.Writer, trades []models.CanonicalTrade) error {
	w := csv.NewWriter(out)
	if err := w.Write(TradeCSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			validation.SanitizeForFormulaInjection(t.OrderID),
			t.CreatedAt.UTC().Format(time.RFC3339),
			validation.SanitizeForFormulaInjection(t.Asset),
			string(t.Side),
			number(t.Quantity),
			number(t.PricePerUnit),
			number(t.TotalAmount),
			number(t.TDSAmount),
			"filled",
			number(t.FeeQuote),
			number(t.NetQuote),
			validation.SanitizeForFormulaInjection(t.Source),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}
