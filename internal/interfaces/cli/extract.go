package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// NewExtractCmd creates the extract subcommand: extraction and scoring only,
// no letter.
func NewExtractCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract structured denial fields without composing a letter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			extraction, score, err := newOfflineService().ExtractDenial(text)
			if err != nil {
				return err
			}

			if wantsJSON(opts) {
				return printJSON(cmd, map[string]interface{}{
					"denial_info":      extraction,
					"confidence_score": score,
				})
			}
			return printExtraction(cmd, extraction, score)
		},
	}
}

func printExtraction(cmd *cobra.Command, ex *denial.Extraction, score float64) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Payer:           %s\n", valueOrDash(ex.PayerName))
	fmt.Fprintf(out, "Reason:          %s\n", ex.Reason.String())
	fmt.Fprintf(out, "Member ID:       %s\n", valueOrDash(ex.MemberID))
	fmt.Fprintf(out, "Claim number:    %s\n", valueOrDash(ex.ClaimNumber))
	fmt.Fprintf(out, "Procedure codes: %s\n", codesOrDash(ex.ProcedureCodes))
	fmt.Fprintf(out, "Diagnosis codes: %s\n", codesOrDash(ex.DiagnosisCodes))
	if ex.DenialDate != nil {
		fmt.Fprintf(out, "Denial date:     %s\n", ex.DenialDate.Format(denial.DateLayout))
	} else {
		fmt.Fprintln(out, "Denial date:     -")
	}
	if ex.AppealDeadline != nil {
		fmt.Fprintf(out, "Appeal deadline: %s\n", ex.AppealDeadline.Format(denial.DateLayout))
	}
	fmt.Fprintf(out, "Confidence:      %.2f\n", score)
	return nil
}

func codesOrDash(codes []string) string {
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, ", ")
}
