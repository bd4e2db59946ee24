package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// NewGenerateCmd creates the generate subcommand: full pipeline from denial
// text to appeal letter.
func NewGenerateCmd(opts *RootOptions) *cobra.Command {
	var (
		patientName string
		memberID    string
		physician   string
	)

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate an appeal letter from a denial letter",
		Long:  "Reads a denial letter from the given file (or stdin), extracts the denial\nfields, and composes an appeal letter with a documentation checklist.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var pctx *denial.PatientContext
			if patientName != "" || memberID != "" || physician != "" {
				pctx = &denial.PatientContext{
					PatientName:       patientName,
					MemberID:          memberID,
					TreatingPhysician: physician,
				}
			}

			result, err := newOfflineService().Run(cmd.Context(), text, pctx)
			if err != nil {
				return err
			}

			if wantsJSON(opts) {
				return printJSON(cmd, result)
			}
			return printGenerateResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&patientName, "patient", "", "patient name for the letter")
	cmd.Flags().StringVar(&memberID, "member-id", "", "member ID, overrides the extracted one")
	cmd.Flags().StringVar(&physician, "physician", "", "treating physician for the signature block")
	return cmd
}

func printGenerateResult(cmd *cobra.Command, result *denial.AppealResult) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, result.AppealLetter)
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "Appeal ID:   %s\n", result.AppealID)
	if result.DenialInfo != nil {
		fmt.Fprintf(out, "Payer:       %s\n", valueOrDash(result.DenialInfo.PayerName))
		fmt.Fprintf(out, "Reason:      %s\n", result.DenialInfo.Reason.String())
	}
	fmt.Fprintf(out, "Confidence:  %.2f\n", result.ConfidenceScore)
	fmt.Fprintf(out, "Source:      %s\n", result.LetterSource)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Required documents:")
	for _, doc := range result.RequiredDocuments {
		fmt.Fprintf(out, "  - %s\n", doc)
	}
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
