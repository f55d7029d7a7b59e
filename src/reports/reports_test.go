package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/instant"
)

var sampleReport = models.TaxReport{
	Sold: []models.SymbolTaxResult{{
		Symbol: "BTC", TotalSold: 0.1234567, TotalProfit: 1000.005, Tax: 312.0016, NetProfit: 688.0034,
		PayableTax: 262.0016, CreatedAt: time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC).UnixMilli(),
	}},
	Totals:   models.TaxTotals{TotalProfit: 1000.005, Tax: 312.0016, NetProfit: 688.0034, PayableTax: 262.0016},
	Holdings: []models.Holding{{Symbol: "ETH", RemainingQty: 2.00000049}},
}

func TestTaxRows_RoundsAtBoundary(t *testing.T) {
	rows := TaxRows(sampleReport, Options{MoneyDecimals: 2, QuantityDecimals: 6})

	require.Len(t, rows, 3)
	assert.Equal(t, []interface{}{"BTC", 0.123457, 1000.01, 312.0, 688.0, 262.0, "2024-04-03"}, rows[1])
	assert.Equal(t, "TOTAL", rows[2][0])
	assert.Equal(t, 1000.01, rows[2][2])
}

func TestHoldingRows(t *testing.T) {
	rows := HoldingRows(sampleReport, Options{MoneyDecimals: 2, QuantityDecimals: 6})
	assert.Equal(t, [][]interface{}{holdingHeader, {"ETH", 2.0}}, rows)
}

func TestWriteTaxWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTaxWorkbook(&buf, sampleReport, OptionsFromConfig(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TaxSheet, HoldingsSheet}, f.GetSheetList())

	symbol, err := f.GetCellValue(TaxSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "BTC", symbol)
	date, err := f.GetCellValue(TaxSheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-03", date)

	holding, err := f.GetCellValue(HoldingsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ETH", holding)
}

func TestWriteTradesCSV_ReimportsAsInstant(t *testing.T) {
	trades := []models.CanonicalTrade{
		{OrderID: "=cmd()", CreatedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC), Asset: "BTC", Side: models.SideBuy,
			Quantity: 0.5, PricePerUnit: 100, TotalAmount: 50, FeeQuote: 0.1, NetQuote: 50.1, Source: "SPOT"},
		{OrderID: "S2", CreatedAt: time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC), Asset: "BTC", Side: models.SideSell,
			Quantity: 0.25, PricePerUnit: 150, TotalAmount: 37.5, TDSAmount: 0.375, Source: "Spot"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, trades))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, TradeCSVHeader, records[0])
	assert.Equal(t, "'=cmd()", records[1][0])
	assert.Equal(t, "0.375", records[2][7])

	parsed, err := instant.NewParser().Parse(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, trades[1].Quantity, parsed[1].Quantity)
	assert.Equal(t, trades[1].TDSAmount, parsed[1].TDSAmount)
	assert.True(t, trades[1].CreatedAt.Equal(parsed[1].CreatedAt))
	assert.Equal(t, models.SideSell, parsed[1].Side)
	assert.Zero(t, parsed[0].FeeQuote)
	assert.Equal(t, "INSTANT", parsed[0].Source)
}
