package handlers

import (
	"net/http"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/utils"
)

// NewRouter wires the API routes and the health endpoint.
func NewRouter(upload *UploadHandler, report *ReportHandler, price *PriceHandler) *http.ServeMux {
	apiRouter := http.NewServeMux()
	apiRouter.HandleFunc("POST /api/upload", upload.HandleUpload)
	apiRouter.HandleFunc("GET /api/reports/{id}", report.HandleGetReport)
	apiRouter.HandleFunc("GET /api/reports/{id}/xlsx", report.HandleGetReportXLSX)
	apiRouter.HandleFunc("GET /api/reports/{id}/trades.csv", report.HandleGetTradesCSV)
	apiRouter.HandleFunc("POST /api/prices", price.HandleImportPrices)

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", apiRouter)
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			utils.SendJSON(w, map[string]string{"message": "Crypto tax backend is running"}, http.StatusOK)
			return
		}
		logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
		http.NotFound(w, r)
	})
	return rootMux
}
