package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
)

// NewPayersCmd creates the payers subcommand group: the built-in payer
// directory and its per-payer documentation requirements.
func NewPayersCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payers",
		Short: "Inspect the built-in payer directory",
	}
	cmd.AddCommand(
		newPayersListCmd(opts),
		newPayersRequirementsCmd(opts),
	)
	return cmd
}

func newPayersListCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known payers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payers := payer.SeedPayers()
			if wantsJSON(opts) {
				return printJSON(cmd, payers)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-24s %-10s %s\n", "NAME", "DEADLINE", "ALIASES")
			for _, p := range payers {
				fmt.Fprintf(out, "%-24s %-10s %s\n",
					p.Name,
					strconv.Itoa(p.AppealDeadlineDays)+"d",
					strings.Join(p.Aliases, ", "))
			}
			return nil
		},
	}
}

func newPayersRequirementsCmd(opts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "requirements <payer>",
		Short: "Show the documentation checklist for a payer and denial reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			r := denial.ParseReason(reason)
			docs := newOfflineService().ResolveRequirements(name, r)

			if wantsJSON(opts) {
				return printJSON(cmd, map[string]interface{}{
					"payer_name":         name,
					"reason":             r.String(),
					"required_documents": docs,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Requirements for %s (%s):\n", name, r.String())
			for _, doc := range docs {
				fmt.Fprintf(out, "  - %s\n", doc)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "medical_necessity", "denial reason category")
	return cmd
}
