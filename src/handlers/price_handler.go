// backend/src/handlers/price_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/services"
	"github.com/username/cryptotax/backend/src/utils"
)

type PriceHandler struct {
	priceService services.PriceService
	maxBodyBytes int64
}

func NewPriceHandler(service services.PriceService, maxBodyBytes int64) *PriceHandler {
	return &PriceHandler{priceService: service, maxBodyBytes: maxBodyBytes}
}

// HandleImportPrices stores symbol mappings and price points posted as
// {"symbols": [...], "points": [...]}.
func (h *PriceHandler) HandleImportPrices(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var batch services.PriceImport
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&batch); err != nil {
		logger.L.Warn("Invalid price import payload", "error", err)
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	n, err := h.priceService.ImportPrices(r.Context(), batch)
	if err != nil {
		logger.L.Warn("Price import rejected", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SendJSON(w, map[string]int{"symbols": len(batch.Symbols), "points": n}, http.StatusOK)
}
