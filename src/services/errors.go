package services

import "errors"

var (
	ErrParsingFailed    = errors.New("failed to parse uploaded file")
	ErrProcessingFailed = errors.New("failed to process trades")
	ErrUploadNotFound   = errors.New("upload not found")

	// ErrNoPriceHistory means the asset has no tracked series or no quote on
	// the requested day. PriceService turns it into models.NoData.
	ErrNoPriceHistory = errors.New("no price history")
)
