package rest

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/usecase"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/loader"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/report"
)

// MaxUploadBytes caps dataset uploads.
const MaxUploadBytes = 32 << 20

// DatasetHandler serves the CSV upload endpoint.
type DatasetHandler struct {
	analyze  *usecase.AnalyzeDataset
	renderer *report.Renderer
	logger   *slog.Logger
}

// NewDatasetHandler creates a new dataset upload handler.
func NewDatasetHandler(analyze *usecase.AnalyzeDataset, renderer *report.Renderer, logger *slog.Logger) *DatasetHandler {
	if renderer == nil {
		renderer = report.NewRenderer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{analyze: analyze, renderer: renderer, logger: logger}
}

// RegisterRoutes registers the dataset endpoints on the provided ServeMux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/datasets/analyze", h.Analyze)
}

// Analyze accepts a CSV either as the raw request body or as the multipart
// field "file", and responds with the analysis as JSON, or as the plain-text
// report when format=text.
func (h *DatasetHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "text" {
		writeError(w, http.StatusBadRequest, "format must be json or text")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	body, closeBody, err := uploadReader(r)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	defer closeBody()

	dataset, err := loader.ReadDataset(body)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	analysis, err := h.analyze.Execute(r.Context(), dto.AnalyzeDatasetRequest{Dataset: dataset})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if format == "text" {
		text, err := h.renderer.Text(analysis)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "report rendering failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, text)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func uploadReader(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func (h *DatasetHandler) writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
	case errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, `multipart field "file" is required`)
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
