// backend/src/services/price_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/model"
	"github.com/username/cryptotax/backend/src/models"
)

const ckPrice = "price_%s_%d"

// priceServiceImpl resolves prices from the sqlite price history and
// memoises results, including misses.
type priceServiceImpl struct {
	db         *sql.DB
	priceCache *cache.Cache
	timeout    time.Duration
}

// NewPriceService creates a price service. A zero timeout disables the
// per-lookup deadline.
func NewPriceService(db *sql.DB, priceCache *cache.Cache, timeout time.Duration) PriceService {
	return &priceServiceImpl{db: db, priceCache: priceCache, timeout: timeout}
}

// ResolvePrice returns the quote of asset nearest to at on the same UTC day,
// or models.NoData when none exists. Errors are returned only for failed
// lookups (timeouts, database errors), never for missing data.
func (s *priceServiceImpl) ResolvePrice(ctx context.Context, asset string, at time.Time) (models.Price, error) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	cacheKey := fmt.Sprintf(ckPrice, asset, at.UTC().UnixMilli())
	if cached, found := s.priceCache.Get(cacheKey); found {
		return cached.(models.Price), nil
	}

	lookupCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	value, err := s.lookup(lookupCtx, asset, at)
	if errors.Is(err, ErrNoPriceHistory) {
		logger.L.Warn("Price Service: No price available", "asset", asset, "time", at.UTC(), "reason", err)
		s.priceCache.SetDefault(cacheKey, models.NoData)
		return models.NoData, nil
	}
	if err != nil {
		return models.NoData, fmt.Errorf("price lookup for %s at %s: %w", asset, at.UTC().Format(time.RFC3339), err)
	}

	price := models.PriceOf(value)
	s.priceCache.SetDefault(cacheKey, price)
	return price, nil
}

func (s *priceServiceImpl) lookup(ctx context.Context, asset string, at time.Time) (float64, error) {
	slug, err := model.GetSlugBySymbol(ctx, s.db, asset)
	if errors.Is(err, model.ErrNotFound) {
		return 0, fmt.Errorf("%w: %v", ErrNoPriceHistory, err)
	}
	if err != nil {
		return 0, err
	}

	value, err := model.GetNearestPrice(ctx, s.db, slug, at)
	if errors.Is(err, model.ErrNotFound) {
		return 0, fmt.Errorf("%w: %v", ErrNoPriceHistory, err)
	}
	return value, err
}

// ImportPrices stores symbol mappings and price points and drops memoised
// lookups, which may now resolve differently.
func (s *priceServiceImpl) ImportPrices(ctx context.Context, batch PriceImport) (int, error) {
	for i, p := range batch.Points {
		if p.Slug == "" || p.TimeInterval.IsZero() {
			return 0, fmt.Errorf("price point %d: slug and time_interval are required", i)
		}
		if p.Price == nil && p.Close == nil {
			return 0, fmt.Errorf("price point %d: price or close is required", i)
		}
	}
	for i, m := range batch.Symbols {
		if strings.TrimSpace(m.Symbol) == "" || m.Slug == "" {
			return 0, fmt.Errorf("symbol %d: symbol and slug are required", i)
		}
	}

	if err := model.UpsertCryptoMaster(ctx, s.db, batch.Symbols); err != nil {
		return 0, fmt.Errorf("failed to store symbols: %w", err)
	}
	n, err := model.InsertPricePoints(ctx, s.db, batch.Points)
	if err != nil {
		return 0, fmt.Errorf("failed to store price points: %w", err)
	}

	s.priceCache.Flush()
	logger.L.Info("Price Service: Imported price history", "symbols", len(batch.Symbols), "points", n)
	return n, nil
}
