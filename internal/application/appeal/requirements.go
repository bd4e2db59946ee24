// Package appeal implements the application services for the appeal
// pipeline: requirements resolution, letter composition, and the
// orchestrator that sequences extraction, classification, scoring,
// composition, persistence, and event publication.
package appeal

import (
	"strings"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
)

// baseDocuments accompany every appeal regardless of payer or reason.
var baseDocuments = []string{
	"Copy of denial letter",
	"Patient insurance card (front and back)",
}

// reasonDocuments is the reason-generic static table.
var reasonDocuments = map[denial.ReasonType][]string{
	denial.ReasonMedicalNecessity: {
		"Physician letter of medical necessity",
		"Relevant clinical notes and history",
		"Lab results and diagnostic imaging",
		"Peer-reviewed literature supporting treatment",
		"Treatment plan documentation",
	},
	denial.ReasonStepTherapyRequired: {
		"Documentation of all prior treatments attempted",
		"Clinical notes showing treatment failures or adverse reactions",
		"Pharmacy records showing previous medications filled",
		"Documentation of contraindications (if applicable)",
	},
	denial.ReasonNotCovered: {
		"Summary of Benefits and Coverage (SBC)",
		"Evidence of Coverage (EOC) relevant sections",
		"Documentation supporting benefit category classification",
		"Any applicable state mandate documentation",
	},
	denial.ReasonOutOfNetwork: {
		"Documentation of in-network provider search",
		"Evidence of network inadequacy",
		"Continuity of care documentation",
		"Provider qualifications/credentials",
	},
	denial.ReasonMissingInformation: {
		"All previously submitted documentation",
		"Specifically requested missing documents",
		"Updated clinical notes",
		"Any additional supporting materials",
	},
	denial.ReasonExperimentalTreatment: {
		"FDA approval documentation",
		"Published peer-reviewed clinical studies",
		"Clinical practice guidelines",
		"Professional society position statements",
		"Evidence of coverage by other major insurers",
	},
	denial.ReasonQuantityLimit: {
		"Physician justification for quantity",
		"Treatment protocol documentation",
		"Disease severity documentation",
		"FDA/manufacturer dosing guidelines",
	},
	denial.ReasonPriorAuthRequired: {
		"Documentation of emergency/urgency (if applicable)",
		"Clinical notes from date of service",
		"Evidence of medical necessity",
		"Explanation for lack of prospective authorization",
	},
}

// fallbackDocuments is the reason-agnostic minimum used when the reason has
// no specific entries, so the checklist is never empty.
var fallbackDocuments = []string{
	"Supporting clinical documentation",
	"Physician statement",
}

// RequirementsResolver maps a (payer, reason) pair onto an ordered,
// deduplicated documentation checklist.  The tables are built once at
// construction and never mutated, so a single resolver is safe for unlimited
// concurrent readers.
type RequirementsResolver struct {
	// payerDocs holds payer-specific checklists keyed by lowercased canonical
	// payer name.  The directory entries describe medical necessity appeals,
	// the dominant appeal type; other reasons fall through to the
	// reason-generic table.
	payerDocs map[string][]string
	payers    []*payer.Payer
}

// NewRequirementsResolver builds the resolver from a payer directory.  A nil
// directory falls back to the built-in seed payers.
func NewRequirementsResolver(payers []*payer.Payer) *RequirementsResolver {
	if payers == nil {
		payers = payer.SeedPayers()
	}
	docs := make(map[string][]string, len(payers))
	for _, p := range payers {
		if len(p.RequiredDocs) > 0 {
			docs[strings.ToLower(p.Name)] = p.RequiredDocs
		}
	}
	return &RequirementsResolver{payerDocs: docs, payers: payers}
}

// Resolve returns the documentation checklist for the given payer and
// reason.  Resolution order: exact payer match (alias-aware) for medical
// necessity appeals, then the reason-generic table, then the generic
// fallback.  Entries are deduplicated case-insensitively preserving the
// order payer-specific → reason-generic → fallback.  The result is never
// empty.
func (r *RequirementsResolver) Resolve(payerName string, reason denial.ReasonType) []string {
	out := []string{}
	seen := make(map[string]bool)

	add := func(items []string) {
		for _, item := range items {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}

	if payerName != "" && reason == denial.ReasonMedicalNecessity {
		if docs := r.lookupPayer(payerName); docs != nil {
			add(docs)
		}
	}

	add(baseDocuments)
	if specific, ok := reasonDocuments[reason]; ok {
		add(specific)
	} else {
		add(fallbackDocuments)
	}

	if len(out) == 0 {
		add(fallbackDocuments)
	}
	return out
}

// lookupPayer finds the payer-specific checklist, matching canonical names
// first and aliases second.
func (r *RequirementsResolver) lookupPayer(name string) []string {
	if docs, ok := r.payerDocs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return docs
	}
	for _, p := range r.payers {
		if p.MatchesName(name) {
			if docs, ok := r.payerDocs[strings.ToLower(p.Name)]; ok {
				return docs
			}
			return nil
		}
	}
	return nil
}
