package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/internal/infrastructure/ocr"
	"github.com/careloop/appealgen/pkg/errors"
)

// GenerateRequest is the body of POST /appeals/text.
type GenerateRequest struct {
	DenialText     string                 `json:"denial_text"`
	PatientContext *denial.PatientContext `json:"patient_context,omitempty"`
}

// ExtractResponse is the body returned by POST /appeals/extract.
type ExtractResponse struct {
	DenialInfo      *denial.Extraction `json:"denial_info"`
	ConfidenceScore float64            `json:"confidence_score"`
}

// UpdateStatusRequest is the body of PATCH /appeals/{appealID}/status.
type UpdateStatusRequest struct {
	Status denial.AppealStatus `json:"status"`
}

// DocumentStore archives original uploaded denial documents.
type DocumentStore interface {
	PutDocument(ctx context.Context, appealID, contentType string, data []byte) (string, error)
}

// LetterArchive serves archived appeal letters back out of object storage.
type LetterArchive interface {
	GetLetter(ctx context.Context, appealID string) ([]byte, error)
	PresignLetterURL(ctx context.Context, appealID string, expiry time.Duration) (string, error)
}

// AppealHandler serves the appeal generation and retrieval endpoints.
type AppealHandler struct {
	svc            *appeal.Service
	converter      ocr.Converter
	docs           DocumentStore
	letters        LetterArchive
	logger         logging.Logger
	maxUploadBytes int64
}

// NewAppealHandler builds the handler.  The converter may be nil, in which
// case document upload is disabled.
func NewAppealHandler(svc *appeal.Service, converter ocr.Converter, maxUploadBytes int64) *AppealHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &AppealHandler{
		svc:            svc,
		converter:      converter,
		logger:         logging.NewNopLogger(),
		maxUploadBytes: maxUploadBytes,
	}
}

// WithDocumentStore enables archiving of uploaded documents.  Archive
// failures are logged and do not fail the request.
func (h *AppealHandler) WithDocumentStore(store DocumentStore, logger logging.Logger) *AppealHandler {
	h.docs = store
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithLetterArchive enables the letter download endpoint.
func (h *AppealHandler) WithLetterArchive(archive LetterArchive) *AppealHandler {
	h.letters = archive
	return h
}

// GenerateFromText runs the full pipeline on raw denial text.
func (h *AppealHandler) GenerateFromText(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.svc.Run(r.Context(), req.DenialText, req.PatientContext)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GenerateFromDocument accepts a multipart denial document upload, converts
// it to text, then runs the full pipeline.
func (h *AppealHandler) GenerateFromDocument(w http.ResponseWriter, r *http.Request) {
	if h.converter == nil {
		writeError(w, r, errors.New(errors.ErrCodeServiceUnavailable, "document conversion not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeConversionTooLarge, "upload exceeds size limit"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read upload"))
		return
	}

	text, err := h.converter.Convert(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var pctx *denial.PatientContext
	if raw := r.FormValue("patient_context"); raw != "" {
		pctx = &denial.PatientContext{}
		if err := json.Unmarshal([]byte(raw), pctx); err != nil {
			writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid patient_context field"))
			return
		}
	}

	result, err := h.svc.Run(r.Context(), text, pctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if h.docs != nil {
		if _, err := h.docs.PutDocument(r.Context(), result.AppealID, header.Header.Get("Content-Type"), data); err != nil {
			h.logger.Warn("failed to archive uploaded document",
				logging.String("appeal_id", result.AppealID), logging.Err(err))
		}
	}
	writeJSON(w, http.StatusCreated, result)
}

// Extract runs extraction and scoring without composing a letter.
func (h *AppealHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	extraction, score, err := h.svc.ExtractDenial(req.DenialText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{DenialInfo: extraction, ConfidenceScore: score})
}

// Get returns a persisted appeal by ID.
func (h *AppealHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetAppeal(r.Context(), chi.URLParam(r, "appealID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// List returns the most recent persisted appeals.
func (h *AppealHandler) List(w http.ResponseWriter, r *http.Request) {
	appeals, err := h.svc.ListAppeals(r.Context(), parseLimit(r, "limit", 20))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"appeals": appeals,
		"count":   len(appeals),
	})
}

// DownloadLetter serves the archived letter for an appeal.  With
// ?presign=true it returns a time-limited download URL instead of the body.
func (h *AppealHandler) DownloadLetter(w http.ResponseWriter, r *http.Request) {
	if h.letters == nil {
		writeError(w, r, errors.New(errors.ErrCodeServiceUnavailable, "letter archive not configured"))
		return
	}
	appealID := chi.URLParam(r, "appealID")

	if r.URL.Query().Get("presign") == "true" {
		u, err := h.letters.PresignLetterURL(r.Context(), appealID, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": u})
		return
	}

	data, err := h.letters.GetLetter(r.Context(), appealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UpdateStatus transitions a persisted appeal's lifecycle status.
func (h *AppealHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "appealID"), req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}
