// backend/src/parsers/coindcx/parser.go
package coindcx

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

// HeaderRow is the zero-based row holding column names in both sheets; the
// rows above it are a report banner.
const HeaderRow = 8

// columns describes where one sheet keeps each canonical field.
type columns struct {
	sheetFragment string
	source        string
	price         string
	gross         string
	fees          string
	net           string
	tds           string
}

var instantColumns = columns{
	sheetFragment: "instant",
	source:        "INSTANT",
	price:         "Avg Buying/Selling Price(in INR)",
	gross:         "Gross Amount Paid/Received by the user(in INR)",
	fees:          "Fees(in INR)",
	net:           "Net Amount Paid/Received by the user(in INR)",
	tds:           "*TDS(in INR)",
}

var spotColumns = columns{
	sheetFragment: "spot",
	source:        "SPOT",
	price:         "Avg Buying/Selling Price(in base currency)",
	gross:         "Gross Amount Paid/Received by the user(in base currency)",
	fees:          "Fees(in base currency)",
	net:           "*Net Amount Paid/Received by the user (in INR)",
	tds:           "**TDS (in INR)",
}

const (
	colTradeID      = "Trade ID"
	colCompletedAt  = "Trade Completion time"
	colCrypto       = "Crypto"
	colPair         = "Crypto Pair"
	colBaseCurrency = "Base currency"
	colSide         = "Side (Buy/Sell)"
	colQuantity     = "Quantity"
)

// CoinDCXParser reads the tax workbook with separate instant and spot
// order sheets.
type CoinDCXParser struct{}

func NewParser() *CoinDCXParser {
	return &CoinDCXParser{}
}

func (p *CoinDCXParser) Parse(ctx context.Context, file io.Reader) ([]models.CanonicalTrade, error) {
	wb, err := common.OpenWorkbook(file)
	if err != nil {
		return nil, fmt.Errorf("coindcx parser: %w", err)
	}

	instantSheet, hasInstant := wb.FindSheet(instantColumns.sheetFragment)
	spotSheet, hasSpot := wb.FindSheet(spotColumns.sheetFragment)
	if !hasInstant && !hasSpot {
		return nil, fmt.Errorf("coindcx parser: %w: expected an instant or spot sheet, found %v",
			common.ErrMissingSheet, wb.SheetNames())
	}

	var trades []models.CanonicalTrade
	if hasInstant {
		got, err := p.parseSheet(wb, instantSheet, instantColumns)
		if err != nil {
			return nil, err
		}
		trades = append(trades, got...)
	}
	if hasSpot && spotSheet != instantSheet {
		got, err := p.parseSheet(wb, spotSheet, spotColumns)
		if err != nil {
			return nil, err
		}
		trades = append(trades, got...)
	}
	return trades, nil
}

func (p *CoinDCXParser) parseSheet(wb *common.Workbook, sheet string, cols columns) ([]models.CanonicalTrade, error) {
	records, err := wb.Records(sheet, HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("coindcx parser: %w", err)
	}

	var trades []models.CanonicalTrade
	dropped := 0
	for i, rec := range records {
		tx, err := toTrade(rec, cols)
		if err != nil {
			dropped++
			logger.L.Debug("CoinDCX Parser: Skipping malformed row", "sheet", sheet, "row", HeaderRow+i+2, "tradeID", rec.Get(colTradeID), "error", err)
			continue
		}
		trades = append(trades, tx)
	}
	logger.L.Info("CoinDCX Parser: Normalized sheet", "sheet", sheet, "trades", len(trades), "dropped", dropped)
	return trades, nil
}

func toTrade(rec common.Record, cols columns) (models.CanonicalTrade, error) {
	asset := rec.Get(colCrypto)
	if cols.source == spotColumns.source {
		asset = common.StripSuffix(rec.Get(colPair), rec.Get(colBaseCurrency))
	}
	if asset == "" {
		return models.CanonicalTrade{}, fmt.Errorf("missing asset")
	}

	side, ok := common.ParseSide(rec.Get(colSide))
	if !ok {
		return models.CanonicalTrade{}, fmt.Errorf("unknown side %q", rec.Get(colSide))
	}
	createdAt, err := utils.ParseTimestamp(rec.Get(colCompletedAt))
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
	price, err := common.ParseNumber(rec.Get(cols.price))
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("price: %w", err)
	}
	gross, err := common.ParseNumber(rec.Get(cols.gross))
	if err != nil {
		return models.CanonicalTrade{}, fmt.Errorf("gross amount: %w", err)
	}

	return models.CanonicalTrade{
		OrderID:      rec.Get(colTradeID),
		CreatedAt:    createdAt,
		Asset:        strings.ToUpper(asset),
		Side:         side,
		Quantity:     qty,
		PricePerUnit: price,
		TotalAmount:  gross,
		FeeQuote:     common.ParseOptional(rec.Get(cols.fees)),
		NetQuote:     common.ParseOptional(rec.Get(cols.net)),
		TDSAmount:    common.ParseOptional(rec.Get(cols.tds)),
		Source:       cols.source,
	}, nil
}
