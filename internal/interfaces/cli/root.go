// Package cli implements the appealctl command line interface.  All commands
// run the pipeline in-process on the template path, with no server or
// database required.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	LogLevel     string
	OutputFormat string
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "appealctl",
		Short:   "Generate insurance denial appeals from the command line",
		Long:    "appealctl extracts structured fields from health insurance denial letters\nand composes appeal letters with per-payer documentation checklists.\nEverything runs locally on the deterministic template path.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		NewGenerateCmd(opts),
		NewExtractCmd(opts),
		NewPayersCmd(opts),
	)
	return cmd
}

// Execute is the CLI entry point.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// newOfflineService builds the pipeline over the built-in payer directory
// with no persistence, archival, events, or generation backend.
func newOfflineService() *appeal.Service {
	payers := payer.SeedPayers()
	return appeal.NewService(appeal.Config{}, appeal.Dependencies{
		Extractor: denial_extractor.NewExtractor(denial_extractor.NewClassifier(nil), payers),
		Scorer:    denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:  appeal.NewRequirementsResolver(payers),
		Composer:  appeal.NewComposer(nil, nil),
	})
}

// readInput returns the denial text from the file argument, or stdin when no
// argument is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// printJSON outputs data as indented JSON.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// wantsJSON reports whether the global output flag selects JSON.
func wantsJSON(opts *RootOptions) bool {
	return strings.EqualFold(opts.OutputFormat, "json")
}
