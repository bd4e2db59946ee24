package appeal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/internal/intelligence/lettergen"
)

// Composer renders the final appeal letter.  When a generation collaborator
// is configured it builds a structured prompt and asks it for prose; on any
// failure, timeout, or missing collaborator it falls through to the
// deterministic template path, so composition never depends on the
// collaborator being reachable.  Output is always non-empty.
type Composer struct {
	generator lettergen.Generator
	logger    logging.Logger

	// now is injected for deterministic tests.
	now func() time.Time
}

// NewComposer builds a composer.  generator may be nil for template-only
// operation.
func NewComposer(generator lettergen.Generator, logger logging.Logger) *Composer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Composer{
		generator: generator,
		logger:    logger.Named("composer"),
		now:       time.Now,
	}
}

// Compose produces the appeal letter for the extraction, optional patient
// context, and resolved requirements checklist.  The returned source records
// which path produced the text.
func (c *Composer) Compose(ctx context.Context, ex *denial.Extraction, pctx *denial.PatientContext, requirements []string) (string, denial.LetterSource) {
	fields := denial.MergeFields(ex, pctx)

	if c.generator != nil {
		if letter, ok := c.generate(ctx, ex, fields, requirements); ok {
			return letter, denial.LetterSourceGenerated
		}
	}

	return c.render(ex, fields, requirements), denial.LetterSourceTemplate
}

// generate drives the collaborator path.  Returns ok=false on any failure so
// the caller falls back to the template.
func (c *Composer) generate(ctx context.Context, ex *denial.Extraction, fields denial.LetterFields, requirements []string) (string, bool) {
	reason := denial.ReasonOther
	if ex != nil {
		reason = ex.Reason
	}
	prompt := &lettergen.LetterPrompt{
		Reason:               reason,
		PayerName:            fields.PayerName,
		DenialDate:           fields.DenialDate,
		ReasonText:           fields.ReasonText,
		PatientName:          fields.PatientName,
		MemberID:             fields.MemberID,
		ClaimNumber:          fields.ClaimNumber,
		ProcedureCode:        fields.ProcedureCode,
		ProcedureDescription: fields.ProcedureDescription,
		DiagnosisCodes:       fields.DiagnosisCodes,
		TreatingPhysician:    fields.TreatingPhysician,
		ClinicalNotes:        fields.ClinicalNotes,
		PriorTreatments:      fields.PriorTreatments,
		RequiredDocuments:    requirements,
	}

	letter, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation collaborator failed, using template path", logging.Err(err))
		return "", false
	}

	// The checklist must appear verbatim regardless of how the model chose
	// to phrase the enclosures section.
	missing := false
	for _, doc := range requirements {
		if !strings.Contains(letter, doc) {
			missing = true
			break
		}
	}
	if missing {
		letter = strings.TrimRight(letter, "\n") + "\n\nEnclosures:\n" + bulletList(requirements)
	}
	return letter, true
}

// render executes the deterministic template for the extraction's reason.
func (c *Composer) render(ex *denial.Extraction, fields denial.LetterFields, requirements []string) string {
	reason := denial.ReasonOther
	if ex != nil {
		reason = ex.Reason
	}

	prior := "- None documented"
	if len(fields.PriorTreatments) > 0 {
		prior = bulletList(fields.PriorTreatments)
	}

	data := templateData{
		CurrentDate:          c.now().Format(denial.DateLayout),
		PatientName:          fields.PatientName,
		MemberID:             fields.MemberID,
		ClaimNumber:          fields.ClaimNumber,
		PayerName:            fields.PayerName,
		DenialDate:           fields.DenialDate,
		ReasonText:           fields.ReasonText,
		ProcedureCode:        fields.ProcedureCode,
		ProcedureDescription: fields.ProcedureDescription,
		DiagnosisCodes:       fields.DiagnosisCodes,
		TreatingPhysician:    fields.TreatingPhysician,
		ClinicalNotes:        fields.ClinicalNotes,
		ServiceDate:          "[DATE OF SERVICE]",
		PriorTreatments:      prior,
		Enclosures:           bulletList(requirements),
	}

	var b strings.Builder
	if err := templateFor(reason).Execute(&b, data); err != nil {
		// Template execution over plain string fields cannot realistically
		// fail, but composition must still return usable text.
		c.logger.Error("template execution failed", logging.Err(err),
			logging.String("reason", reason.String()))
		return fmt.Sprintf(
			"Dear %s Appeals Department,\n\nWe formally appeal the denial dated %s for claim %s.\n\nEnclosures:\n%s",
			data.PayerName, data.DenialDate, data.ClaimNumber, data.Enclosures)
	}
	return b.String()
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
