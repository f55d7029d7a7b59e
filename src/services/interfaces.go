package services

import (
	"context"
	"io"
	"time"

	"github.com/username/cryptotax/backend/src/models"
)

// UploadResult is what a processed upload returns to the client.
type UploadResult struct {
	Upload models.Upload    `json:"upload"`
	Report models.TaxReport `json:"report"`
}

// UploadService runs an exchange export through normalization, the FIFO
// engine and aggregation, and keeps the result retrievable by upload id.
type UploadService interface {
	ProcessUpload(ctx context.Context, file io.Reader, source, filename string) (*UploadResult, error)
	GetReport(ctx context.Context, uploadID string) (models.TaxReport, error)
	GetTrades(ctx context.Context, uploadID string) ([]models.CanonicalTrade, error)
}

// PriceImport is a batch of symbol mappings and price points.
type PriceImport struct {
	Symbols []models.CryptoMaster `json:"symbols"`
	Points  []models.PricePoint   `json:"points"`
}

// PriceService resolves historical prices from the stored price series.
type PriceService interface {
	ResolvePrice(ctx context.Context, asset string, at time.Time) (models.Price, error)
	ImportPrices(ctx context.Context, batch PriceImport) (int, error)
}
