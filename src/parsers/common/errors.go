package common

import "errors"

var (
	// ErrMissingSheet is returned when a workbook lacks every sheet a
	// parser needs. No partial result accompanies it.
	ErrMissingSheet = errors.New("required sheet not found")
	// ErrEmptyInput is returned for an empty file or a sheet without a
	// header row.
	ErrEmptyInput = errors.New("empty input")
)
