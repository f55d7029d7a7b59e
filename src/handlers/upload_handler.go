// backend/src/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/models"
	"github.com/username/cryptotax/backend/src/parsers"
	"github.com/username/cryptotax/backend/src/security/validation"
	"github.com/username/cryptotax/backend/src/services"
	"github.com/username/cryptotax/backend/src/utils"
)

type UploadHandler struct {
	uploadService      services.UploadService
	maxUploadSizeBytes int64
}

func NewUploadHandler(service services.UploadService, maxUploadSizeBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:      service,
		maxUploadSizeBytes: maxUploadSizeBytes,
	}
}

type uploadResponse struct {
	UploadID   string           `json:"uploadId"`
	TradeCount int              `json:"tradeCount"`
	Report     models.TaxReport `json:"report"`
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	maxMB := h.maxUploadSizeBytes / (1024 * 1024)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSizeBytes+1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadSizeBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", maxMB), http.StatusBadRequest)
		return
	}

	source := strings.ToLower(strings.TrimSpace(r.FormValue("source")))
	if source == "" {
		utils.SendJSONError(w, fmt.Sprintf("Missing 'source' field, expected one of %s", strings.Join(parsers.Sources(), ", ")), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := validation.StripUnprintable(fileHeader.Filename)
	if fileHeader.Size > h.maxUploadSizeBytes {
		log.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB (header check)", maxMB), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateFileExtension(filename); err != nil {
		log.Warn("Invalid file extension", "filename", filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		log.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("Processing upload request", "filename", filename, "source", source, "clientType", clientContentType, "detectedType", detectedContentType)

	result, err := h.uploadService.ProcessUpload(r.Context(), file, source, filename)
	if err != nil {
		switch {
		case errors.Is(err, parsers.ErrUnknownSource):
			utils.SendJSONError(w, fmt.Sprintf("Unsupported source '%s', expected one of %s", source, strings.Join(parsers.Sources(), ", ")), http.StatusBadRequest)
		case errors.Is(err, parsers.ErrMissingSheet), errors.Is(err, parsers.ErrEmptyInput):
			log.Warn("Upload rejected, export structure not recognised", "filename", filename, "source", source, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("File does not look like a %s export: %v", source, err), http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			log.Warn("Upload processing failed due to parsing errors", "filename", filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
		default:
			log.Error("Internal error processing upload", "filename", filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, uploadResponse{
		UploadID:   result.Upload.ID,
		TradeCount: result.Upload.TradeCount,
		Report:     result.Report,
	}, http.StatusOK)
}
