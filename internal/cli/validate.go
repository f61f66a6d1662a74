package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/ingest"
	"github.com/roach88/scriptplan/internal/rules"
)

// ValidationError is one problem found by the validate command.
type ValidationError struct {
	File    string `json:"file"`
	Index   *int   `json:"index,omitempty"` // candidate position, for batch files
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Candidates int               `json:"candidates"`
	Errors     []ValidationError `json:"errors"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	RulesFile string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [candidates.yaml]",
		Short: "Check a batch or rules file without touching the database",
		Long: `Validate a candidate batch and/or a CUE rules file.

Every candidate is checked the way ingest checks it, and all problems
are reported at once. Nothing is stored. Exits 1 if anything is invalid.

Example:
  scriptplan validate ./scan.yaml
  scriptplan validate --rules ./rules.cue
  scriptplan validate --rules ./rules.cue ./scan.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var batchPath string
			if len(args) == 1 {
				batchPath = args[0]
			}
			return runValidate(opts, batchPath, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "CUE rules file to check")

	return cmd
}

func runValidate(opts *ValidateOptions, batchPath string, cmd *cobra.Command) error {
	if batchPath == "" && opts.RulesFile == "" {
		return NewExitError(ExitCommandError, "nothing to validate: pass a batch file and/or --rules")
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Errors: []ValidationError{}}

	if opts.RulesFile != "" {
		r, err := rules.LoadFile(opts.RulesFile)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{File: opts.RulesFile, Message: err.Error()})
		} else {
			formatter.VerboseLog("Rules: %d critical, %d complex platform(s)",
				len(r.CriticalPlatforms), len(r.ComplexPlatforms))
		}
	}

	if batchPath != "" {
		batch, err := ingest.LoadBatch(batchPath)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{File: batchPath, Message: err.Error()})
		} else {
			result.Candidates = len(batch.Candidates)
			formatter.VerboseLog("Found %d candidate(s) in %s", len(batch.Candidates), batchPath)
			for i, c := range batch.Candidates {
				if err := ingest.Validate(c); err != nil {
					result.Errors = append(result.Errors, ValidationError{File: batchPath, Index: &i, Message: err.Error()})
				}
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	if err := formatter.Success(result, func(w io.Writer) { writeValidateText(w, result) }); err != nil {
		return err
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func writeValidateText(w io.Writer, r ValidationResult) {
	if r.Valid {
		fmt.Fprintln(w, "✓ All files valid")
		return
	}
	for _, e := range r.Errors {
		if e.Index != nil {
			fmt.Fprintf(w, "%s: candidate %d: %s\n", e.File, *e.Index, e.Message)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", e.File, e.Message)
	}
}
