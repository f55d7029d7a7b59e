// backend/src/parsers/instant/parser.go
package instant

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/common"
	"github.com/username/cryptotax/backend/src/utils"
)

// Column names of the generic instant-trade export.
const (
	colOrderID     = "Order ID"
	colCurrency    = "Currency"
	colSide        = "Side"
	colQuantity    = "Total Quantity"
	colPrice       = "Price Per Unit"
	colTotalAmount = "Total Amount"
	colTDS         = "TDS Amount"
	colStatus      = "Status"
	colCreatedAt   = "Created At"
	colUpdatedAt   = "Updated At"

	sourceTag = "INSTANT"
)

// InstantParser reads the one-sheet instant/simple trade export where the
// side column is spelled out ("buy"/"sell").
type InstantParser struct{}

func NewParser() *InstantParser {
	return &InstantParser{}
}

func (p *InstantParser) Parse(ctx context.Context, file io.Reader) ([]models.CanonicalTrade, error) {
	wb, err := common.OpenWorkbook(file)
	if err != nil {
		return nil, fmt.Errorf("instant parser: %w", err)
	}
	sheet, ok := wb.FirstSheet()
	if !ok {
		return nil, fmt.Errorf("instant parser: %w", common.ErrMissingSheet)
	}
	records, err := wb.Records(sheet, 0)
	if err != nil {
		return nil, fmt.Errorf("instant parser: %w", err)
	}

	var trades []models.CanonicalTrade
	dropped := 0
	for i, rec := range records {
		if !isFilled(rec.Get(colStatus)) {
			continue
		}
		tx, err := toTrade(rec)
		if err != nil {
			dropped++
			logger.L.Debug("Instant Parser: Skipping malformed row", "row", i+2, "orderID", rec.Get(colOrderID), "error", err)
			continue
		}
		trades = append(trades, tx)
	}

	logger.L.Info("Instant Parser: Normalized export", "trades", len(trades), "dropped", dropped)
	return trades, nil
}

// isFilled admits completed orders. Exports without a status column are
// treated as all-filled.
func isFilled(status string) bool {
	return status == "" || strings.EqualFold(status, "filled")
}

func toTrade(rec common.Record) (models.CanonicalTrade, error) {
	side, ok := common.ParseSide(rec.Get(colSide))
	if !ok {
		return models.CanonicalTrade{}, fmt.Errorf("unknown side %q", rec.Get(colSide))
	}
	asset := rec.Get(colCurrency)
	if asset == "" {
		return models.CanonicalTrade{}, fmt.Errorf("missing currency")
	}
	createdAt, err := utils.ParseTimestamp(rec.Get(colCreatedAt))
	if err != nil {
		return models.CanonicalTrade{}, err
	}
	qty, err := common.ParseNumber(rec.Get(colQuantity))
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("quantity: %w", err)
	}
	if qty < 0 {
		return models.CanonicalTrade{}, fmt.Errorf("negative quantity %v", qty)
	}
	price, err := common.ParseNumber(rec.Get(colPrice))
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("price: %w", err)
	}

	total := qty * price
	if rec.Has(colTotalAmount) {
		total, err = common.ParseNumber(rec.Get(colTotalAmount))
		if err != nil {
			return models.CanonicalTrade{}, fmt.Errorf("total amount: %w", err)
		}
	}

	return models.CanonicalTrade{
		OrderID:      rec.Get(colOrderID),
		CreatedAt:    createdAt,
		Asset:        strings.ToUpper(asset),
		Side:         side,
		Quantity:     qty,
		PricePerUnit: price,
		TotalAmount:  total,
		TDSAmount:    common.ParseOptional(rec.Get(colTDS)),
		Source:       sourceTag,
	}, nil
}
