package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/cryptotax/backend/src/config"
	"github.com/username/cryptotax/backend/src/models"
)

var day0 = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func trade(asset string, side models.Side, qty, price float64, dayOffset int) models.CanonicalTrade {
	return models.CanonicalTrade{
		Asset:        asset,
		Side:         side,
		Quantity:     qty,
		PricePerUnit: price,
		TotalAmount:  qty * price,
		CreatedAt:    day0.AddDate(0, 0, dayOffset),
	}
}

func sell(asset string, qty, price float64, dayOffset int, tds float64) models.CanonicalTrade {
	t := trade(asset, models.SideSell, qty, price, dayOffset)
	t.TDSAmount = tds
	return t
}

func TestProcess_ZeroCostBasis(t *testing.T) {
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("BTC", models.SideBuy, 1, 100, 0),
		sell("BTC", 2, 150, 1, 0),
	})

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, 200.0, r.TotalProfit)
	assert.Equal(t, 2.0, r.TotalSold)
	assert.Zero(t, r.RemainingQty)
}

func TestProcess_SurchargeAndTDS(t *testing.T) {
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("ETH", models.SideBuy, 10, 100, 0),
		sell("ETH", 10, 200, 3, 50),
	})

	require.Len(t, results, 1)
	r := results[0]
	assert.InDelta(t, 1000.0, r.TotalProfit, 1e-9)
	assert.InDelta(t, 312.0, r.Tax, 1e-9)
	assert.InDelta(t, 688.0, r.NetProfit, 1e-9)
	assert.InDelta(t, 262.0, r.PayableTax, 1e-9)
	assert.Equal(t, day0.AddDate(0, 0, 3).UnixMilli(), r.CreatedAt)
}

func TestProcess_FIFOOrderAndPartialLots(t *testing.T) {
	// Lots listed out of order are still consumed oldest first.
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("SOL", models.SideBuy, 5, 20, 2),
		trade("SOL", models.SideBuy, 5, 10, 0),
		sell("SOL", 7, 30, 5, 0),
	})

	r := results[0]
	// 5 @ (30-10) + 2 @ (30-20)
	assert.InDelta(t, 120.0, r.TotalProfit, 1e-9)
	assert.InDelta(t, 3.0, r.RemainingQty, 1e-9)
}

func TestProcess_LossIsNotTaxed(t *testing.T) {
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("DOGE", models.SideBuy, 100, 1, 0),
		sell("DOGE", 100, 0.5, 1, 3),
	})

	r := results[0]
	assert.Equal(t, -50.0, r.TotalProfit)
	assert.Zero(t, r.Tax)
	assert.Zero(t, r.PayableTax)
	assert.Equal(t, -50.0, r.NetProfit)
}

func TestProcess_TDSModes(t *testing.T) {
	trades := []models.CanonicalTrade{
		trade("BTC", models.SideBuy, 2, 100, 0),
		sell("BTC", 1, 200, 1, 10),
		sell("BTC", 1, 200, 2, 20),
	}

	last := NewTaxProcessor(DefaultTaxOptions()).Process(trades)[0]
	// profit 200 -> tax 62.4
	assert.InDelta(t, 62.4-20, last.PayableTax, 1e-9)

	opts := DefaultTaxOptions()
	opts.TDSMode = config.TDSModeSum
	sum := NewTaxProcessor(opts).Process(trades)[0]
	assert.InDelta(t, 62.4-30, sum.PayableTax, 1e-9)
	assert.Equal(t, last.CreatedAt, sum.CreatedAt)
}

func TestProcess_NoSellSymbol(t *testing.T) {
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("ADA", models.SideBuy, 3, 1, 0),
		trade("ADA", models.SideBuy, 4, 2, 1),
	})

	require.Len(t, results, 1)
	assert.Equal(t, models.SymbolTaxResult{Symbol: "ADA", RemainingQty: 7}, results[0])
}

func TestProcess_ConservationAndSymbolOrder(t *testing.T) {
	trades := []models.CanonicalTrade{
		trade("XRP", models.SideBuy, 1, 1, 0),
		trade("BTC", models.SideBuy, 0.3, 100, 0),
		sell("BTC", 0.1, 110, 1, 0),
		sell("XRP", 5, 2, 1, 0),
		sell("BTC", 0.2, 120, 2, 0),
	}

	results := NewTaxProcessor(DefaultTaxOptions()).Process(trades)
	require.Len(t, results, 2)
	assert.Equal(t, "XRP", results[0].Symbol)
	assert.Equal(t, "BTC", results[1].Symbol)

	assert.Equal(t, 5.0, results[0].TotalSold)
	assert.InDelta(t, 0.3, results[1].TotalSold, 1e-12)
	assert.Zero(t, results[1].RemainingQty)
}

func TestProcess_EqualTimestampsKeepInputOrder(t *testing.T) {
	results := NewTaxProcessor(DefaultTaxOptions()).Process([]models.CanonicalTrade{
		trade("BTC", models.SideBuy, 1, 100, 0),
		trade("BTC", models.SideBuy, 1, 50, 0),
		sell("BTC", 1, 100, 1, 0),
	})

	// First-listed lot (price 100) is consumed first.
	assert.Zero(t, results[0].TotalProfit)
	assert.Equal(t, 1.0, results[0].RemainingQty)
}

func TestProcess_Idempotent(t *testing.T) {
	trades := []models.CanonicalTrade{
		trade("BTC", models.SideBuy, 1, 100, 0),
		trade("BTC", models.SideBuy, 1, 120, 1),
		sell("BTC", 1.5, 150, 2, 5),
	}
	before := append([]models.CanonicalTrade(nil), trades...)

	p := NewTaxProcessor(DefaultTaxOptions())
	first := p.Process(trades)
	second := p.Process(trades)

	assert.Equal(t, first, second)
	assert.Equal(t, before, trades)
}

func TestProcess_Empty(t *testing.T) {
	assert.Empty(t, NewTaxProcessor(DefaultTaxOptions()).Process(nil))
}
