// backend/src/processors/transaction_processor.go
package processors

import (
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/models"
)

type TransactionProcessor struct{}

func NewTransactionProcessor() *TransactionProcessor { return &TransactionProcessor{} }

// Process stamps every trade with a content hash and drops repeats of a row
// that carries an order id, keeping the first occurrence. Rows without an
// order id are separate fills even when their content is identical. Input
// order is preserved.
func (p *TransactionProcessor) Process(trades []models.CanonicalTrade) []models.CanonicalTrade {
	seen := make(map[string]bool, len(trades))
	out := make([]models.CanonicalTrade, 0, len(trades))
	for _, tx := range trades {
		tx.HashID = generateHash(tx)
		if tx.OrderID == "" {
			out = append(out, tx)
			continue
		}
		if seen[tx.HashID] {
			logger.L.Debug("Transaction Processor: Skipping duplicate trade", "orderID", tx.OrderID, "asset", tx.Asset, "hash", tx.HashID)
			continue
		}
		seen[tx.HashID] = true
		out = append(out, tx)
	}
	if dupes := len(trades) - len(out); dupes > 0 {
		logger.L.Info("Transaction Processor: Removed duplicate trades", "duplicates", dupes, "kept", len(out))
	}
	return out
}

// generateHash creates a stable identifier from the trade's economic content.
func generateHash(tx models.CanonicalTrade) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%g|%g|%g|%g|%s",
		tx.CreatedAt.UTC().Format(time.RFC3339Nano), tx.OrderID, tx.Asset, tx.Side,
		tx.Quantity, tx.PricePerUnit, tx.TotalAmount, tx.TDSAmount, tx.Source)
	hash := blake2b.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
