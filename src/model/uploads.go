package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/cryptotax/backend/src/models"
)

// InsertUpload stores an upload and its trades in one transaction, in the
// given order. upload.TradeCount is set to the number of stored trades.
func InsertUpload(ctx context.Context, db *sql.DB, upload *models.Upload, trades []models.CanonicalTrade) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO uploads (id, source, filename, trade_count, created_at) VALUES (?, ?, ?, 0, ?)`,
		upload.ID, upload.Source, upload.Filename, upload.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (
			upload_id, position, order_id, created_at_ns, asset, side, quantity, price_per_unit,
			total_amount, fee_quote, net_quote, tds_amount, source, hash_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stored := 0
	for i, t := range trades {
		res, err := stmt.ExecContext(ctx, upload.ID, i, t.OrderID, t.CreatedAt.UnixNano(), t.Asset, string(t.Side),
			t.Quantity, t.PricePerUnit, t.TotalAmount, t.FeeQuote, t.NetQuote, t.TDSAmount, t.Source, t.HashID)
		if err != nil {
			return fmt.Errorf("failed to insert trade %d: %w", i, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			stored += int(n)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE uploads SET trade_count = ? WHERE id = ?`, stored, upload.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	upload.TradeCount = stored
	return nil
}

// GetUpload returns the stored upload with id.
func GetUpload(ctx context.Context, db *sql.DB, id string) (models.Upload, error) {
	var u models.Upload
	var filename sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, source, filename, trade_count, created_at FROM uploads WHERE id = ?`, id).
		Scan(&u.ID, &u.Source, &filename, &u.TradeCount, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Upload{}, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Upload{}, err
	}
	u.Filename = filename.String
	return u, nil
}

// GetTradesByUpload returns an upload's trades in their original order.
func GetTradesByUpload(ctx context.Context, db *sql.DB, uploadID string) ([]models.CanonicalTrade, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT order_id, created_at_ns, asset, side, quantity, price_per_unit, total_amount,
			fee_quote, net_quote, tds_amount, source, hash_id
		FROM trades WHERE upload_id = ? ORDER BY position`, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := []models.CanonicalTrade{}
	for rows.Next() {
		var t models.CanonicalTrade
		var orderID, source sql.NullString
		var createdAt int64
		var side string
		if err := rows.Scan(&orderID, &createdAt, &t.Asset, &side, &t.Quantity, &t.PricePerUnit, &t.TotalAmount,
			&t.FeeQuote, &t.NetQuote, &t.TDSAmount, &source, &t.HashID); err != nil {
			return nil, err
		}
		t.OrderID = orderID.String
		t.Source = source.String
		t.Side = models.Side(side)
		t.CreatedAt = time.Unix(0, createdAt).UTC()
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
