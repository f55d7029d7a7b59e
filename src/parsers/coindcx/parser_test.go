package coindcx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/common"
)

var instantHeader = []interface{}{
	"Trade ID", "Trade Completion time", "Crypto", "Side (Buy/Sell)", "Quantity",
	"Avg Buying/Selling Price(in INR)", "Gross Amount Paid/Received by the user(in INR)",
	"Fees(in INR)", "Net Amount Paid/Received by the user(in INR)", "*TDS(in INR)",
}

var spotHeader = []interface{}{
	"Trade ID", "Trade Completion time", "Crypto Pair", "Base currency", "Side (Buy/Sell)", "Quantity",
	"Avg Buying/Selling Price(in base currency)", "Gross Amount Paid/Received by the user(in base currency)",
	"Fees(in base currency)", "*Net Amount Paid/Received by the user (in INR)", "**TDS (in INR)",
}

// workbook writes each sheet with a banner, the header on row HeaderRow and
// the given data rows below it.
func workbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetCellValue(name, "A1", "CoinDCX Tax Report FY 2024-25"))
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, HeaderRow+1+i)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParse_InstantAndSpot(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		"Instant Orders": {
			instantHeader,
			{"I1", "2024-04-01 10:00:00", "btc", "Buy", 0.5, 100, 50, 0.1, 50.1, 0},
			{"I2", "2024-04-02 10:00:00", "BTC", "Sell", 0.5, 120, 60, 0.1, 59.9, 0.6},
		},
		"Spot Trades": {
			spotHeader,
			{"S1", "2024-04-03 11:30:00", "ETHINR", "INR", "buy", 2, 200, 400, 1, 401, 0},
		},
	})

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.Equal(t, models.CanonicalTrade{
		OrderID:      "I2",
		CreatedAt:    time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC),
		Asset:        "BTC",
		Side:         models.SideSell,
		Quantity:     0.5,
		PricePerUnit: 120,
		TotalAmount:  60,
		FeeQuote:     0.1,
		NetQuote:     59.9,
		TDSAmount:    0.6,
		Source:       "INSTANT",
	}, trades[1])

	spot := trades[2]
	assert.Equal(t, "ETH", spot.Asset)
	assert.Equal(t, "SPOT", spot.Source)
	assert.Equal(t, 400.0, spot.TotalAmount)
	assert.Equal(t, 401.0, spot.NetQuote)
}

func TestParse_SpotOnly(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		"spot": {
			spotHeader,
			{"S1", "2024-04-03 11:30:00", "SOLUSDT", "USDT", "sell", 1, 150, 150, 0, 12000, 120},
		},
	})

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "SOL", trades[0].Asset)
	assert.Equal(t, 120.0, trades[0].TDSAmount)
}

func TestParse_DropsMalformedRows(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		"Instant": {
			instantHeader,
			{"I1", "2024-04-01 10:00:00", "BTC", "Buy", "No Data Available.", 100, 50, 0, 0, 0},
			{"I2", "2024-04-01 10:00:00", "BTC", "Buy", 1, "NaN", 50, 0, 0, 0},
			{"I3", "", "BTC", "Buy", 1, 100, 100, 0, 0, 0},
			{"I4", "2024-04-01 10:00:00", "BTC", "Swap", 1, 100, 100, 0, 0, 0},
			{"I5", "2024-04-01 10:00:00", "BTC", "Buy", 1, 100, 100, "", "", ""},
		},
	})

	trades, err := NewParser().Parse(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "I5", trades[0].OrderID)
	assert.Zero(t, trades[0].FeeQuote)
}

func TestParse_MissingSheet(t *testing.T) {
	buf := workbook(t, map[string][][]interface{}{
		"Futures": {instantHeader},
	})

	_, err := NewParser().Parse(context.Background(), buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingSheet), fmt.Sprint(err))
}
