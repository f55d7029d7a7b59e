// backend/src/services/upload_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/model"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers"
	"github.com/username/cryptotax/backend/src/processors"
)

const (
	ckUploadReport = "report_upload_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type uploadServiceImpl struct {
	db                   *sql.DB
	parserOptions        parsers.Options
	transactionProcessor processors.TradeDeduplicator
	taxProcessor         processors.TaxEngine
	reportProcessor      processors.ReportAggregator
	reportCache          *cache.Cache
}

func NewUploadService(
	db *sql.DB,
	parserOptions parsers.Options,
	transactionProcessor processors.TradeDeduplicator,
	taxProcessor processors.TaxEngine,
	reportProcessor processors.ReportAggregator,
	reportCache *cache.Cache,
) UploadService {
	return &uploadServiceImpl{
		db:                   db,
		parserOptions:        parserOptions,
		transactionProcessor: transactionProcessor,
		taxProcessor:         taxProcessor,
		reportProcessor:      reportProcessor,
		reportCache:          reportCache,
	}
}

func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, file io.Reader, source, filename string) (*UploadResult, error) {
	overallStartTime := time.Now()
	log := logger.FromContext(ctx)
	log.Info("ProcessUpload START", "source", source, "filename", filename)

	parser, err := parsers.GetParser(source, s.parserOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	trades, err := parser.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}
	trades = s.transactionProcessor.Process(trades)

	upload := models.Upload{
		ID:        uuid.NewString(),
		Source:    source,
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
	}
	if err := model.InsertUpload(ctx, s.db, &upload, trades); err != nil {
		return nil, fmt.Errorf("%w: storing upload: %w", ErrProcessingFailed, err)
	}

	report := s.computeReport(trades)
	s.reportCache.SetDefault(fmt.Sprintf(ckUploadReport, upload.ID), report)

	log.Info("ProcessUpload END", "uploadID", upload.ID, "trades", upload.TradeCount,
		"symbols", len(report.Results), "duration", time.Since(overallStartTime))
	return &UploadResult{Upload: upload, Report: report}, nil
}

// GetReport returns the cached report of an upload, recomputing it from the
// stored trades on a cache miss.
func (s *uploadServiceImpl) GetReport(ctx context.Context, uploadID string) (models.TaxReport, error) {
	log := logger.FromContext(ctx)
	cacheKey := fmt.Sprintf(ckUploadReport, uploadID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		log.Debug("Cache hit for upload report", "uploadID", uploadID)
		return cached.(models.TaxReport), nil
	}
	log.Info("Cache miss for upload report, recomputing from DB", "uploadID", uploadID)

	trades, err := s.GetTrades(ctx, uploadID)
	if err != nil {
		return models.TaxReport{}, err
	}
	report := s.computeReport(trades)
	s.reportCache.SetDefault(cacheKey, report)
	return report, nil
}

// GetTrades returns the stored canonical trades of an upload in upload order.
func (s *uploadServiceImpl) GetTrades(ctx context.Context, uploadID string) ([]models.CanonicalTrade, error) {
	if _, err := model.GetUpload(ctx, s.db, uploadID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
		}
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}
	trades, err := model.GetTradesByUpload(ctx, s.db, uploadID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading trades: %w", ErrProcessingFailed, err)
	}
	return trades, nil
}

func (s *uploadServiceImpl) computeReport(trades []models.CanonicalTrade) models.TaxReport {
	results := s.taxProcessor.Process(trades)
	return s.reportProcessor.Aggregate(results)
}
