package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"

	"github.com/username/cryptotax/backend/src/database"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers"
	"github.com/username/cryptotax/backend/src/processors"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newPriceService(db *sql.DB) PriceService {
	return NewPriceService(db, cache.New(time.Minute, time.Minute), time.Second)
}

func newUploadService(db *sql.DB, prices PriceService, reportCache *cache.Cache) UploadService {
	return NewUploadService(
		db,
		parsers.Options{Prices: prices, Concurrency: 2},
		processors.NewTransactionProcessor(),
		processors.NewTaxProcessor(processors.DefaultTaxOptions()),
		processors.NewReportProcessor(),
		reportCache,
	)
}

func seedPrices(t *testing.T, prices PriceService) {
	t.Helper()
	day := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	p := func(v float64) *float64 { return &v }
	_, err := prices.ImportPrices(context.Background(), PriceImport{
		Symbols: []models.CryptoMaster{
			{Symbol: "BTC", Slug: "bitcoin", IsActive: true, LiveCrypto: true},
			{Symbol: "DEAD", Slug: "dead-coin", IsActive: false, LiveCrypto: false},
		},
		Points: []models.PricePoint{
			{Slug: "bitcoin", TimeInterval: day.Add(9 * time.Hour), Price: p(100)},
			{Slug: "bitcoin", TimeInterval: day.Add(15 * time.Hour), Close: p(110)},
			{Slug: "bitcoin", TimeInterval: day.Add(24*time.Hour + 10*time.Hour), Price: p(150)},
			{Slug: "dead-coin", TimeInterval: day.Add(9 * time.Hour), Price: p(1)},
		},
	})
	require.NoError(t, err)
}
