// backend/src/handlers/report_handler.go
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/reports"
	"github.com/username/cryptotax/backend/src/services"
	"github.com/username/cryptotax/backend/src/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	uploadService services.UploadService
	options       reports.Options
}

func NewReportHandler(service services.UploadService, options reports.Options) *ReportHandler {
	return &ReportHandler{uploadService: service, options: options}
}

func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	logger.L.Debug("Handling GetReport request with ETag support", "uploadID", uploadID)

	report, err := h.uploadService.GetReport(r.Context(), uploadID)
	if err != nil {
		sendServiceError(w, uploadID, err)
		return
	}

	currentETag, etagErr := utils.GenerateETag(report)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for report", "uploadID", uploadID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Info("ETag match for report", "uploadID", uploadID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleGetReportXLSX(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	report, err := h.uploadService.GetReport(r.Context(), uploadID)
	if err != nil {
		sendServiceError(w, uploadID, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteTaxWorkbook(&buf, report, h.options); err != nil {
		logger.L.Error("Failed to render tax workbook", "uploadID", uploadID, "error", err)
		utils.SendJSONError(w, "Failed to render tax workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"tax-report-%s.xlsx\"", uploadID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.L.Error("Failed to write tax workbook response", "uploadID", uploadID, "error", err)
	}
}

func (h *ReportHandler) HandleGetTradesCSV(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	trades, err := h.uploadService.GetTrades(r.Context(), uploadID)
	if err != nil {
		sendServiceError(w, uploadID, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteTradesCSV(&buf, trades); err != nil {
		logger.L.Error("Failed to render trades CSV", "uploadID", uploadID, "error", err)
		utils.SendJSONError(w, "Failed to render trades CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"trades-%s.csv\"", uploadID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.L.Error("Failed to write trades CSV response", "uploadID", uploadID, "error", err)
	}
}

func sendServiceError(w http.ResponseWriter, uploadID string, err error) {
	if errors.Is(err, services.ErrUploadNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("Upload '%s' not found", uploadID), http.StatusNotFound)
		return
	}
	logger.L.Error("Error retrieving upload data from service", "uploadID", uploadID, "error", err)
	utils.SendJSONError(w, "An internal error occurred while loading the report.", http.StatusInternalServerError)
}
