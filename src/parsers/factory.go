// backend/src/parsers/factory.go
package parsers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/cryptotax/backend/src/parsers/binance"
	"github.com/username/cryptotax/backend/src/parsers/coindcx"
	"github.com/username/cryptotax/backend/src/parsers/coinswitch"
	"github.com/username/cryptotax/backend/src/parsers/instant"
)

const (
	SourceInstant    = "instant"
	SourceCoinDCX    = "coindcx"
	SourceCoinSwitch = "coinswitch"
	SourceBinance    = "binance"
)

// Options carries the collaborators some parsers need.
type Options struct {
	Prices      binance.PriceResolver
	Concurrency int
}

// GetParser selects the normalizer for an exchange tag.
func GetParser(source string, opts Options) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case SourceInstant:
		return instant.NewParser(), nil
	case SourceCoinDCX:
		return coindcx.NewParser(), nil
	case SourceCoinSwitch:
		return coinswitch.NewParser(), nil
	case SourceBinance:
		if opts.Prices == nil {
			return nil, fmt.Errorf("binance parser requires a price resolver")
		}
		return binance.NewParser(opts.Prices, opts.Concurrency), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
}

// Sources lists the supported exchange tags.
func Sources() []string {
	s := []string{SourceInstant, SourceCoinDCX, SourceCoinSwitch, SourceBinance}
	sort.Strings(s)
	return s
}
