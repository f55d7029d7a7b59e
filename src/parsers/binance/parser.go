// backend/src/parsers/binance/parser.go
package binance

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/username/cryptotax/backend/src/classifier"
	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/common"
	"github.com/username/cryptotax/backend/src/utils"
)

const (
	colUTCTime   = "UTC_Time"
	colAccount   = "Account"
	colOperation = "Operation"
	colCoin      = "Coin"
	colChange    = "Change"
)

// PriceResolver looks up the historical quote price of asset at a moment.
// It returns models.NoData when the asset has no price for that day.
type PriceResolver interface {
	ResolvePrice(ctx context.Context, asset string, at time.Time) (models.Price, error)
}

// BinanceParser reads the account-activity ledger. Rows carry no side or
// price: the side comes from the operation label and the price from a
// PriceResolver.
type BinanceParser struct {
	prices      PriceResolver
	concurrency int
}

// NewParser returns a parser that issues at most concurrency price lookups
// at a time.
func NewParser(prices PriceResolver, concurrency int) *BinanceParser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BinanceParser{prices: prices, concurrency: concurrency}
}

// ledgerRow is a row that passed coercion and is waiting for its price.
type ledgerRow struct {
	line      int
	createdAt time.Time
	asset     string
	side      models.Side
	quantity  float64
	account   string
	operation string
}

func (p *BinanceParser) Parse(ctx context.Context, file io.Reader) ([]models.CanonicalTrade, error) {
	wb, err := common.OpenWorkbook(file)
	if err != nil {
		return nil, fmt.Errorf("binance parser: %w", err)
	}
	sheet, ok := wb.FirstSheet()
	if !ok {
		return nil, fmt.Errorf("binance parser: %w", common.ErrMissingSheet)
	}
	records, err := wb.Records(sheet, 0)
	if err != nil {
		return nil, fmt.Errorf("binance parser: %w", err)
	}

	rows := make([]ledgerRow, 0, len(records))
	dropped := 0
	for i, rec := range records {
		row, err := toLedgerRow(rec)
		if err != nil {
			dropped++
			logger.L.Debug("Binance Parser: Skipping malformed row", "row", i+2, "operation", rec.Get(colOperation), "error", err)
			continue
		}
		row.line = i + 2
		rows = append(rows, row)
	}

	prices, err := p.resolveAll(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("binance parser: %w", err)
	}

	trades := make([]models.CanonicalTrade, 0, len(rows))
	for i, row := range rows {
		price := prices[i]
		if !price.Resolved {
			dropped++
			logger.L.Debug("Binance Parser: Skipping row without price", "row", row.line, "operation", row.operation, "coin", row.asset, "time", row.createdAt)
			continue
		}
		trades = append(trades, models.CanonicalTrade{
			OrderID:      fmt.Sprintf("BINANCE-%d", row.line),
			CreatedAt:    row.createdAt,
			Asset:        row.asset,
			Side:         row.side,
			Quantity:     row.quantity,
			PricePerUnit: price.Value,
			TotalAmount:  price.Value * row.quantity,
			Source:       row.account,
		})
	}

	logger.L.Info("Binance Parser: Normalized ledger", "trades", len(trades), "dropped", dropped)
	return trades, nil
}

// resolveAll looks up a price for every row with bounded parallelism. The
// returned slice is index-aligned with rows. A failed lookup leaves the
// row unresolved; only cancellation of ctx aborts the batch.
func (p *BinanceParser) resolveAll(ctx context.Context, rows []ledgerRow) ([]models.Price, error) {
	prices := make([]models.Price, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range rows {
		row := rows[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			price, err := p.prices.ResolvePrice(gctx, row.asset, row.createdAt)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.L.Warn("Binance Parser: Price lookup failed, treating as unresolved", "coin", row.asset, "time", row.createdAt, "error", err)
				return nil
			}
			prices[i] = price
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

func toLedgerRow(rec common.Record) (ledgerRow, error) {
	asset := strings.ToUpper(rec.Get(colCoin))
	if asset == "" {
		return ledgerRow{}, fmt.Errorf("missing coin")
	}
	createdAt, err := utils.ParseTimestamp(rec.Get(colUTCTime))
	if err != nil {
		return ledgerRow{}, err
	}
	change, err := common.ParseNumber(rec.Get(colChange))
	if err != nil {
		return ledgerRow{}, fmt.Errorf("change: %w", err)
	}
	operation := rec.Get(colOperation)
	if !classifier.Known(operation) {
		logger.L.Debug("Binance Parser: Unknown operation, classified as BUY", "operation", operation)
	}
	return ledgerRow{
		createdAt: createdAt,
		asset:     asset,
		side:      classifier.Classify(operation),
		quantity:  math.Abs(change),
		account:   rec.Get(colAccount),
		operation: operation,
	}, nil
}
