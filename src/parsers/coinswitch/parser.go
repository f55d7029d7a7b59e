// backend/src/parsers/coinswitch/parser.go
package coinswitch

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

const (
	// HeaderRow is the zero-based header position in the spot trades sheet.
	HeaderRow = 17
	// QuoteCurrency is stripped from market names and price strings.
	QuoteCurrency = "INR"

	colTransactionID = "Transaction Id"
	colDate          = "Date"
	colMarket        = "Market"
	colTradeType     = "Trade Type"
	colPrice         = "Price"
	colVolume        = "Volume"
	colTotal         = "Total"
	colTDS           = "TDS Amount"
	colFees          = "Fees(in INR)"
	colNet           = "Net Amount Paid/Received by the user(in INR)"

	sourceTag = "SPOT"
)

// CoinSwitchParser reads the spot trade report whose price column is a
// formatted string such as "1,234.56 INR".
type CoinSwitchParser struct{}

func NewParser() *CoinSwitchParser {
	return &CoinSwitchParser{}
}

func (p *CoinSwitchParser) Parse(ctx context.Context, file io.Reader) ([]models.CanonicalTrade, error) {
	wb, err := common.OpenWorkbook(file)
	if err != nil {
		return nil, fmt.Errorf("coinswitch parser: %w", err)
	}
	sheet, ok := wb.FindSheet("spot")
	if !ok {
		return nil, fmt.Errorf("coinswitch parser: %w: expected a spot sheet, found %v", common.ErrMissingSheet, wb.SheetNames())
	}
	records, err := wb.Records(sheet, HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("coinswitch parser: %w", err)
	}

	var trades []models.CanonicalTrade
	dropped := 0
	for i, rec := range records {
		tx, err := toTrade(rec)
		if err != nil {
			dropped++
			logger.L.Debug("CoinSwitch Parser: Skipping malformed row", "row", HeaderRow+i+2, "transactionID", rec.Get(colTransactionID), "error", err)
			continue
		}
		trades = append(trades, tx)
	}
	logger.L.Info("CoinSwitch Parser: Normalized export", "trades", len(trades), "dropped", dropped)
	return trades, nil
}

func toTrade(rec common.Record) (models.CanonicalTrade, error) {
	asset := common.StripSuffix(rec.Get(colMarket), QuoteCurrency)
	if asset == "" {
		return models.CanonicalTrade{}, fmt.Errorf("missing market")
	}
	side, ok := common.ParseSide(rec.Get(colTradeType))
	if !ok {
		return models.CanonicalTrade{}, fmt.Errorf("unknown trade type %q", rec.Get(colTradeType))
	}
	createdAt, err := utils.ParseTimestamp(rec.Get(colDate))
	if err != nil {
		return models.CanonicalTrade{}, err
	}
	price, err := common.ParsePriceString(rec.Get(colPrice), QuoteCurrency)
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("price: %w", err)
	}
	qty, err := common.ParsePriceString(rec.Get(colVolume), "")
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("volume: %w", err)
	}
	if qty < 0 {
		return models.CanonicalTrade{}, fmt.Errorf("negative volume %v", qty)
	}
	total, err := common.ParsePriceString(rec.Get(colTotal), QuoteCurrency)
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("total: %w", err)
	}

	return models.CanonicalTrade{
		OrderID:      rec.Get(colTransactionID),
		CreatedAt:    createdAt,
		Asset:        strings.ToUpper(asset),
		Side:         side,
		Quantity:     qty,
		PricePerUnit: price,
		TotalAmount:  total,
		FeeQuote:     common.ParseOptional(rec.Get(colFees)),
		NetQuote:     common.ParseOptional(rec.Get(colNet)),
		TDSAmount:    common.ParseOptional(rec.Get(colTDS)),
		Source:       sourceTag,
	}, nil
}
