package coinswitch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/common"
)

var header = []interface{}{
	"Transaction Id", "Date", "Market", "Trade Type", "Price", "Volume", "Total", "Fees(in INR)",
	"Net Amount Paid/Received by the user(in INR)", "TDS Amount",
}

func report(t *testing.T, sheet string, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetCellValue(sheet, "A1", "CoinSwitch Tax Statement"))

	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, HeaderRow+1+i)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParse_PriceStrings(t *testing.T) {
	buf := report(t, "Spot Trades",
		[]interface{}{"CS1", "2024-06-01 09:15:00", "BTCINR", "BUY", "51,23,456.50 INR", "0.01", "51,234.57 INR", "12.5", "51247.07", "0"},
		[]interface{}{"CS2", "2024-06-02 09:15:00", "ETHINR", "SELL", "2,50,000 INR", "0.5", "1,25,000 INR", "", "", "1250"},
	)

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, models.CanonicalTrade{
		OrderID:      "CS1",
		CreatedAt:    time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC),
		Asset:        "BTC",
		Side:         models.SideBuy,
		Quantity:     0.01,
		PricePerUnit: 5123456.5,
		TotalAmount:  51234.57,
		FeeQuote:     12.5,
		NetQuote:     51247.07,
		Source:       "SPOT",
	}, trades[0])
	assert.Equal(t, "ETH", trades[1].Asset)
	assert.Equal(t, 1250.0, trades[1].TDSAmount)
}

func TestParse_DropsUnknownTradeType(t *testing.T) {
	buf := report(t, "spot",
		[]interface{}{"CS1", "2024-06-01 09:15:00", "BTCINR", "TRANSFER", "100 INR", "1", "100 INR"},
		[]interface{}{"CS2", "2024-06-01 09:15:00", "BTCINR", "sell", "100 INR", "1", "100 INR"},
	)

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "CS2", trades[0].OrderID)
	assert.Equal(t, models.SideSell, trades[0].Side)
}

func TestParse_DropsUnparseablePrice(t *testing.T) {
	buf := report(t, "spot",
		[]interface{}{"CS1", "2024-06-01 09:15:00", "BTCINR", "BUY", "No Data Available.", "0.01", "100 INR"},
		[]interface{}{"CS2", "2024-06-01 09:15:00", "BTCINR", "BUY", "100 INR", "1", "100 INR"},
	)

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "CS2", trades[0].OrderID)
}

func TestParse_MissingSpotSheet(t *testing.T) {
	buf := report(t, "Futures")
	_, err := NewParser().Parse(context.Background(), buf)
	assert.True(t, errors.Is(err, common.ErrMissingSheet))
}
