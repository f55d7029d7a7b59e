package common

import (
	"strings"

	"github.com/username/cryptotax/backend/src/models"
)

// ParseSide maps an exchange side label to the canonical Side. Comparison
// is case-insensitive; anything other than buy/sell is rejected.
func ParseSide(s string) (models.Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return models.SideBuy, true
	case "sell":
		return models.SideSell, true
	default:
		return "", false
	}
}
