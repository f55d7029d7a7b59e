// backend/src/processors/tax_processor.go
package processors

import (
	"math"
	"sort"

	"github.com/username/cryptotax/backend/src/config"
	"github.com/username/cryptotax/backend/src/models"
)

// quantityEpsilon absorbs float residue left after lot consumption so that
// a fully consumed lot reads as exactly zero.
const quantityEpsilon = 1e-12

// TaxOptions are the rates applied to a symbol's realized profit.
type TaxOptions struct {
	TaxRate       float64
	SurchargeRate float64
	TDSMode       string
}

// DefaultTaxOptions mirrors the configuration defaults.
func DefaultTaxOptions() TaxOptions {
	def := config.Default()
	return TaxOptions{TaxRate: def.TaxRate, SurchargeRate: def.SurchargeRate, TDSMode: def.TDSMode}
}

// TaxOptionsFromConfig reads the tax settings from the loaded config.
func TaxOptionsFromConfig(cfg *config.AppConfig) TaxOptions {
	if cfg == nil {
		return DefaultTaxOptions()
	}
	return TaxOptions{TaxRate: cfg.TaxRate, SurchargeRate: cfg.SurchargeRate, TDSMode: cfg.TDSMode}
}

// TaxProcessor matches sells against buys per symbol in FIFO order.
type TaxProcessor struct {
	opts TaxOptions
}

func NewTaxProcessor(opts TaxOptions) *TaxProcessor {
	return &TaxProcessor{opts: opts}
}

// lot is a buy whose quantity is consumed by later sells. Lots are rebuilt
// from the input on every run, so the input trades are never mutated.
type lot struct {
	quantity float64
	price    float64
}

// Process returns one result per symbol, in order of first appearance.
func (p *TaxProcessor) Process(trades []models.CanonicalTrade) []models.SymbolTaxResult {
	symbols, bySymbol := groupTradesBySymbol(trades)

	results := make([]models.SymbolTaxResult, 0, len(symbols))
	for _, symbol := range symbols {
		results = append(results, p.processSymbol(symbol, bySymbol[symbol]))
	}
	return results
}

func (p *TaxProcessor) processSymbol(symbol string, trades []models.CanonicalTrade) models.SymbolTaxResult {
	buys, sells := separateBuysAndSells(trades)
	sortTradesByTime(buys)
	sortTradesByTime(sells)

	lots := make([]lot, len(buys))
	for i, b := range buys {
		lots[i] = lot{quantity: b.Quantity, price: b.PricePerUnit}
	}

	result := models.SymbolTaxResult{Symbol: symbol}
	var tds float64

	for _, sell := range sells {
		remaining := sell.Quantity
		result.TotalSold += sell.Quantity

		for i := range lots {
			if remaining <= 0 {
				break
			}
			current := &lots[i]
			if current.quantity <= 0 {
				continue
			}
			used := math.Min(remaining, current.quantity)
			result.TotalProfit += used * (sell.PricePerUnit - current.price)
			current.quantity = settle(current.quantity - used)
			remaining = settle(remaining - used)
		}

		// Without cost basis the uncovered part is taxed in full.
		if remaining > 0 {
			result.TotalProfit += remaining * sell.PricePerUnit
		}

		if p.opts.TDSMode == config.TDSModeSum {
			tds += sell.TDSAmount
		} else {
			tds = sell.TDSAmount
		}
		result.CreatedAt = sell.CreatedAt.UnixMilli()
	}

	for _, l := range lots {
		if l.quantity > 0 {
			result.RemainingQty += l.quantity
		}
	}

	result.NetProfit = result.TotalProfit
	if result.TotalProfit > 0 {
		tax := result.TotalProfit * p.opts.TaxRate
		tax += tax * p.opts.SurchargeRate
		result.Tax = tax
		result.NetProfit = result.TotalProfit - tax
		result.PayableTax = tax - tds
	}
	return result
}

func settle(q float64) float64 {
	if math.Abs(q) < quantityEpsilon {
		return 0
	}
	return q
}

func groupTradesBySymbol(trades []models.CanonicalTrade) ([]string, map[string][]models.CanonicalTrade) {
	var order []string
	grouped := make(map[string][]models.CanonicalTrade)
	for _, tx := range trades {
		if tx.Asset == "" {
			continue
		}
		if _, seen := grouped[tx.Asset]; !seen {
			order = append(order, tx.Asset)
		}
		grouped[tx.Asset] = append(grouped[tx.Asset], tx)
	}
	return order, grouped
}

func separateBuysAndSells(trades []models.CanonicalTrade) (buys, sells []models.CanonicalTrade) {
	for _, tx := range trades {
		switch tx.Side {
		case models.SideBuy:
			buys = append(buys, tx)
		case models.SideSell:
			sells = append(sells, tx)
		}
	}
	return
}

// sortTradesByTime orders trades chronologically; equal timestamps keep
// their input order.
func sortTradesByTime(trades []models.CanonicalTrade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].CreatedAt.Before(trades[j].CreatedAt)
	})
}
