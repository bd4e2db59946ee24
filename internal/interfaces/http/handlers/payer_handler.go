package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
)

// RequirementsResponse is the body of GET /payers/{payerName}/requirements.
type RequirementsResponse struct {
	PayerName          string   `json:"payer_name"`
	Reason             string   `json:"reason"`
	RequiredDocuments  []string `json:"required_documents"`
	AppealDeadlineDays int      `json:"appeal_deadline_days,omitempty"`
	Tips               []string `json:"tips,omitempty"`
}

// PayerHandler serves the payer reference-data endpoints.
type PayerHandler struct {
	svc    *appeal.Service
	payers payer.Repository
}

// NewPayerHandler builds the handler.
func NewPayerHandler(svc *appeal.Service, payers payer.Repository) *PayerHandler {
	return &PayerHandler{svc: svc, payers: payers}
}

// List returns the payer directory.
func (h *PayerHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.payers.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payers": all,
		"count":  len(all),
	})
}

// Get returns one payer by name or alias.
func (h *PayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.payers.GetByName(r.Context(), chi.URLParam(r, "payerName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Requirements returns the documentation checklist for a payer and denial
// reason.  An unrecognised reason falls back to the generic checklist, same
// as the pipeline itself.
func (h *PayerHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "payerName")
	reason := denial.ParseReason(r.URL.Query().Get("reason"))

	resp := RequirementsResponse{
		PayerName:         name,
		Reason:            reason.String(),
		RequiredDocuments: h.svc.ResolveRequirements(name, reason),
	}

	// Deadline and tips are enrichment only; an unknown payer still gets a
	// checklist.
	if p, err := h.payers.GetByName(r.Context(), name); err == nil && p != nil {
		resp.PayerName = p.Name
		resp.AppealDeadlineDays = p.AppealDeadlineDays
		resp.Tips = p.Tips
	}

	writeJSON(w, http.StatusOK, resp)
}
