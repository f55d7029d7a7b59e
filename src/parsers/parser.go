// backend/src/parsers/parser.go
package parsers

import (
	"context"
	"errors"
	"io"

	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers/common"
)

// Parser turns one exchange export into canonical trades. Rows that fail
// numeric coercion are dropped; structural problems are returned as errors.
type Parser interface {
	Parse(ctx context.Context, file io.Reader) ([]models.CanonicalTrade, error)
}

var (
	ErrMissingSheet  = common.ErrMissingSheet
	ErrEmptyInput    = common.ErrEmptyInput
	ErrUnknownSource = errors.New("no parser available for source")
)
