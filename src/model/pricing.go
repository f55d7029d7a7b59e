package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/cryptotax/backend/src/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// GetSlugBySymbol returns the price series slug tracked for an exchange
// symbol. Only active, live entries qualify.
func GetSlugBySymbol(ctx context.Context, db *sql.DB, symbol string) (string, error) {
	query := `
		SELECT slug FROM crypto_master
		WHERE UPPER(symbol) = UPPER(?) AND is_active = TRUE AND live_crypto = TRUE
		ORDER BY slug
		LIMIT 1`

	var slug string
	err := db.QueryRowContext(ctx, query, strings.TrimSpace(symbol)).Scan(&slug)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("slug for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return slug, nil
}

// GetNearestPrice returns the quote of slug on the UTC calendar day of at
// that is closest in time to at. A row's quote is its price, or its close
// when price is null.
func GetNearestPrice(ctx context.Context, db *sql.DB, slug string, at time.Time) (float64, error) {
	at = at.UTC()
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
	target := at.UnixMilli()

	query := `
		SELECT COALESCE(price, close) FROM price_history
		WHERE slug = ? AND time_interval >= ? AND time_interval < ?
			AND COALESCE(price, close) IS NOT NULL
		ORDER BY ABS(time_interval - ?), time_interval
		LIMIT 1`

	var price float64
	err := db.QueryRowContext(ctx, query, slug, dayStart, dayStart+dayMillis, target).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("price for %s on %s: %w", slug, at.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}

// UpsertCryptoMaster inserts or updates symbol to slug mappings.
func UpsertCryptoMaster(ctx context.Context, db *sql.DB, entries []models.CryptoMaster) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO crypto_master (symbol, slug, is_active, live_crypto)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol, slug) DO UPDATE SET is_active = excluded.is_active, live_crypto = excluded.live_crypto`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, strings.ToUpper(strings.TrimSpace(e.Symbol)), e.Slug, e.IsActive, e.LiveCrypto); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", e.Symbol, err)
		}
	}
	return tx.Commit()
}

// InsertPricePoints stores price points, replacing any existing quote for
// the same slug and instant. It returns the number of rows written.
func InsertPricePoints(ctx context.Context, db *sql.DB, points []models.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (slug, time_interval, price, close)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slug, time_interval) DO UPDATE SET price = excluded.price, close = excluded.close`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Slug, p.TimeInterval.UTC().UnixMilli(), nullFloat(p.Price), nullFloat(p.Close)); err != nil {
			return 0, fmt.Errorf("failed to insert price for %s at %s: %w", p.Slug, p.TimeInterval, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(points), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
