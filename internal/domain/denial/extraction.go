package denial

import (
	"strings"
	"time"
)

// DateLayout is the canonical textual form for dates recovered from denial
// text.  Parseable date-like substrings are normalised to this layout;
// unparseable ones are dropped rather than surfaced as a partial match.
const DateLayout = "2006-01-02"

// Extraction is the immutable structured record produced from raw denial
// text.  Optional fields are nil/empty when the corresponding pattern did not
// match; Reason is always a valid ReasonType, never empty (ReasonOther when
// nothing matched with sufficient signal).
type Extraction struct {
	PayerName      string     `json:"payer_name,omitempty"`
	DenialDate     *time.Time `json:"denial_date,omitempty"`
	Reason         ReasonType `json:"denial_reason"`
	ReasonText     string     `json:"denial_reason_text,omitempty"`
	ProcedureCodes []string   `json:"procedure_codes"`
	DiagnosisCodes []string   `json:"diagnosis_codes"`
	MemberID       string     `json:"member_id,omitempty"`
	ClaimNumber    string     `json:"claim_number,omitempty"`
	AppealDeadline *time.Time `json:"appeal_deadline,omitempty"`

	// RawText retains the full input for audit and for the letter composer.
	RawText string `json:"raw_text"`
}

// PatientContext is optional caller-supplied clinical context.  Every field
// is optional; absence must not abort the pipeline.
type PatientContext struct {
	PatientName          string   `json:"patient_name,omitempty"`
	DateOfBirth          string   `json:"date_of_birth,omitempty"`
	MemberID             string   `json:"member_id,omitempty"`
	ProcedureCode        string   `json:"procedure_code,omitempty"`
	ProcedureDescription string   `json:"procedure_description,omitempty"`
	DiagnosisCodes       []string `json:"diagnosis_codes,omitempty"`
	TreatingPhysician    string   `json:"treating_physician,omitempty"`
	ClinicalNotes        string   `json:"clinical_notes,omitempty"`
	PriorTreatments      []string `json:"prior_treatments,omitempty"`
}

// IsEmpty reports whether the context carries no information at all.
func (c *PatientContext) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.PatientName == "" && c.DateOfBirth == "" && c.MemberID == "" &&
		c.ProcedureCode == "" && c.ProcedureDescription == "" &&
		len(c.DiagnosisCodes) == 0 && c.TreatingPhysician == "" &&
		c.ClinicalNotes == "" && len(c.PriorTreatments) == 0
}

// LetterFields is the merged, fully-populated view consumed by the letter
// composer.  Every field is non-empty: merging substitutes neutral
// placeholder phrasing for anything neither the extraction nor the context
// provided, so templates never render raw insertion-point syntax.
type LetterFields struct {
	PatientName          string
	MemberID             string
	ClaimNumber          string
	PayerName            string
	DenialDate           string
	ReasonText           string
	ProcedureCode        string
	ProcedureDescription string
	DiagnosisCodes       string
	TreatingPhysician    string
	ClinicalNotes        string
	PriorTreatments      []string
}

// Neutral placeholder phrasing used when neither source provides a value.
const (
	placeholderPatient   = "the patient"
	placeholderMemberID  = "[MEMBER ID]"
	placeholderClaim     = "[CLAIM NUMBER]"
	placeholderPayer     = "the insurance plan"
	placeholderDate      = "[DATE]"
	placeholderProcedure = "the requested procedure"
	placeholderDiagnosis = "the documented diagnosis"
	placeholderPhysician = "The Treating Physician"
	placeholderNotes     = "Supporting clinical documentation is enclosed."
)

// MergeFields combines an extraction with optional patient context into the
// composer's field set.  Precedence is fixed and documented: a present
// context field overrides the extraction-derived value; an absent context
// field never overwrites a present extraction field; when both are absent
// the neutral placeholder applies.
func MergeFields(ex *Extraction, ctx *PatientContext) LetterFields {
	f := LetterFields{
		PatientName:          placeholderPatient,
		MemberID:             placeholderMemberID,
		ClaimNumber:          placeholderClaim,
		PayerName:            placeholderPayer,
		DenialDate:           placeholderDate,
		ReasonText:           "the reason stated in the denial letter",
		ProcedureCode:        "[CPT CODE]",
		ProcedureDescription: placeholderProcedure,
		DiagnosisCodes:       placeholderDiagnosis,
		TreatingPhysician:    placeholderPhysician,
		ClinicalNotes:        placeholderNotes,
	}

	if ex != nil {
		if ex.PayerName != "" {
			f.PayerName = ex.PayerName
		}
		if ex.DenialDate != nil {
			f.DenialDate = ex.DenialDate.Format(DateLayout)
		}
		if ex.ReasonText != "" {
			f.ReasonText = ex.ReasonText
		}
		if ex.MemberID != "" {
			f.MemberID = ex.MemberID
		}
		if ex.ClaimNumber != "" {
			f.ClaimNumber = ex.ClaimNumber
		}
		if len(ex.ProcedureCodes) > 0 {
			f.ProcedureCode = strings.Join(ex.ProcedureCodes, ", ")
		}
		if len(ex.DiagnosisCodes) > 0 {
			f.DiagnosisCodes = strings.Join(ex.DiagnosisCodes, ", ")
		}
	}

	if ctx != nil {
		if ctx.PatientName != "" {
			f.PatientName = ctx.PatientName
		}
		if ctx.MemberID != "" {
			f.MemberID = ctx.MemberID
		}
		if ctx.ProcedureCode != "" {
			f.ProcedureCode = ctx.ProcedureCode
		}
		if ctx.ProcedureDescription != "" {
			f.ProcedureDescription = ctx.ProcedureDescription
		}
		if len(ctx.DiagnosisCodes) > 0 {
			f.DiagnosisCodes = strings.Join(ctx.DiagnosisCodes, ", ")
		}
		if ctx.TreatingPhysician != "" {
			f.TreatingPhysician = ctx.TreatingPhysician
		}
		if ctx.ClinicalNotes != "" {
			f.ClinicalNotes = ctx.ClinicalNotes
		}
		if len(ctx.PriorTreatments) > 0 {
			f.PriorTreatments = append([]string(nil), ctx.PriorTreatments...)
		}
	}

	return f
}
