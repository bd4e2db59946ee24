package lettergen

import (
	"fmt"
	"strings"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// LetterPrompt carries every structured field the generation backend needs to
// draft an appeal letter.  The composer fills it from the extraction, the
// merged patient context, and the resolved requirements checklist; the prompt
// never depends on free-form state.
type LetterPrompt struct {
	Reason               denial.ReasonType
	PayerName            string
	DenialDate           string
	ReasonText           string
	PatientName          string
	MemberID             string
	ClaimNumber          string
	ProcedureCode        string
	ProcedureDescription string
	DiagnosisCodes       string
	TreatingPhysician    string
	ClinicalNotes        string
	PriorTreatments      []string
	RequiredDocuments    []string
}

// Build renders the prompt text sent to the completion backend.  Every field
// is spelled out explicitly so the model has no reason to invent identifiers,
// and the requirements checklist is quoted verbatim with an instruction to
// reproduce each item unchanged.
func (p *LetterPrompt) Build() string {
	var b strings.Builder

	b.WriteString("You are a healthcare prior authorization appeals specialist.\n")
	b.WriteString("Draft a professional, assertive appeal letter using ONLY the facts below.\n\n")

	b.WriteString("Denial Information:\n")
	fmt.Fprintf(&b, "- Payer: %s\n", p.PayerName)
	fmt.Fprintf(&b, "- Denial Reason Category: %s\n", p.Reason)
	fmt.Fprintf(&b, "- Denial Reason Text: %s\n", p.ReasonText)
	fmt.Fprintf(&b, "- Denial Date: %s\n", p.DenialDate)
	fmt.Fprintf(&b, "- Claim Number: %s\n", p.ClaimNumber)
	fmt.Fprintf(&b, "- Member ID: %s\n", p.MemberID)
	fmt.Fprintf(&b, "- Procedure: %s (%s)\n", p.ProcedureCode, p.ProcedureDescription)
	fmt.Fprintf(&b, "- Diagnoses: %s\n", p.DiagnosisCodes)

	b.WriteString("\nPatient Context:\n")
	fmt.Fprintf(&b, "- Patient: %s\n", p.PatientName)
	fmt.Fprintf(&b, "- Treating Physician: %s\n", p.TreatingPhysician)
	fmt.Fprintf(&b, "- Clinical Notes: %s\n", p.ClinicalNotes)
	if len(p.PriorTreatments) > 0 {
		fmt.Fprintf(&b, "- Prior Treatments: %s\n", strings.Join(p.PriorTreatments, "; "))
	} else {
		b.WriteString("- Prior Treatments: none documented\n")
	}

	b.WriteString("\nThe letter must:\n")
	b.WriteString("1. Clearly state this is an appeal of the denial\n")
	b.WriteString("2. Reference the specific denial reason\n")
	b.WriteString("3. Provide medical necessity justification\n")
	b.WriteString("4. Cite relevant clinical guidelines when applicable\n")
	b.WriteString("5. Request expedited review if appropriate\n")
	b.WriteString("6. End with an enclosures list containing EXACTLY these items, each on its own line, reproduced verbatim:\n")
	for _, doc := range p.RequiredDocuments {
		fmt.Fprintf(&b, "- %s\n", doc)
	}

	return b.String()
}
