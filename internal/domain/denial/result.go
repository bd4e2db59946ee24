package denial

import "time"

// AppealStatus tracks the lifecycle of a persisted appeal after generation.
type AppealStatus string

const (
	StatusGenerated AppealStatus = "generated"
	StatusSubmitted AppealStatus = "submitted"
	StatusApproved  AppealStatus = "approved"
	StatusDenied    AppealStatus = "denied"
)

// IsValid reports whether s is a known appeal status.
func (s AppealStatus) IsValid() bool {
	switch s {
	case StatusGenerated, StatusSubmitted, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// LetterSource identifies which composition path produced the appeal letter.
type LetterSource string

const (
	LetterSourceTemplate  LetterSource = "template"
	LetterSourceGenerated LetterSource = "generated"
)

// AppealResult is the pipeline's output.  It is created once per request,
// immutable after construction, and ownership passes to the caller for
// persistence and serialisation.
type AppealResult struct {
	// AppealID is a fresh opaque identifier generated per invocation.
	AppealID string `json:"appeal_id"`

	// AppealLetter is the rendered appeal text.  Always non-empty.
	AppealLetter string `json:"appeal_letter"`

	// DenialInfo is the structured extraction the letter was built from.
	DenialInfo *Extraction `json:"denial_info"`

	// RequiredDocuments is the deduplicated ordered checklist of supporting
	// documents.  Never empty.
	RequiredDocuments []string `json:"required_documents"`

	// ConfidenceScore is the extraction-recovery heuristic in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`

	// LetterSource records whether the letter came from the generation
	// collaborator or the deterministic template path.
	LetterSource LetterSource `json:"letter_source"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Appeal is the persisted form of an AppealResult together with the patient
// identity captured at generation time.
type Appeal struct {
	ID                string       `json:"id"`
	PatientName       string       `json:"patient_name,omitempty"`
	MemberID          string       `json:"member_id,omitempty"`
	PayerName         string       `json:"payer_name,omitempty"`
	Reason            ReasonType   `json:"denial_reason"`
	ReasonText        string       `json:"denial_reason_text,omitempty"`
	DenialDate        *time.Time   `json:"denial_date,omitempty"`
	ClaimNumber       string       `json:"claim_number,omitempty"`
	ProcedureCodes    []string     `json:"procedure_codes"`
	DiagnosisCodes    []string     `json:"diagnosis_codes"`
	AppealLetter      string       `json:"appeal_letter"`
	RequiredDocuments []string     `json:"required_documents"`
	ConfidenceScore   float64      `json:"confidence_score"`
	DenialText        string       `json:"denial_text"`
	Status            AppealStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewAppeal builds the persisted record from a pipeline result and the
// context it was generated with.
func NewAppeal(res *AppealResult, ctx *PatientContext) *Appeal {
	a := &Appeal{
		ID:                res.AppealID,
		AppealLetter:      res.AppealLetter,
		RequiredDocuments: res.RequiredDocuments,
		ConfidenceScore:   res.ConfidenceScore,
		Status:            StatusGenerated,
		CreatedAt:         res.GeneratedAt,
		UpdatedAt:         res.GeneratedAt,
	}
	if ex := res.DenialInfo; ex != nil {
		a.PayerName = ex.PayerName
		a.Reason = ex.Reason
		a.ReasonText = ex.ReasonText
		a.DenialDate = ex.DenialDate
		a.ClaimNumber = ex.ClaimNumber
		a.MemberID = ex.MemberID
		a.ProcedureCodes = ex.ProcedureCodes
		a.DiagnosisCodes = ex.DiagnosisCodes
		a.DenialText = ex.RawText
	}
	if ctx != nil {
		a.PatientName = ctx.PatientName
		if ctx.MemberID != "" {
			a.MemberID = ctx.MemberID
		}
	}
	return a
}
