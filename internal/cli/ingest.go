package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/ingest"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Tenant string
	Rescan bool
}

// IngestResult is the ingest command's output.
type IngestResult struct {
	Tenant     string       `json:"tenant"`
	Candidates int          `json:"candidates"`
	Stats      ingest.Stats `json:"stats"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <candidates.yaml>",
		Short: "Store classified scripts as assets",
		Long: `Ingest a YAML batch of classified script candidates.

Candidates are validated, fingerprinted and deduplicated against the
tenant's stored assets. Candidates already stored are counted as
duplicates unless --rescan is set, in which case their classification is
refreshed.

Exits 1 if any candidate failed validation or could not be stored.

Example:
  scriptplan ingest --tenant shop-1 ./scan.yaml
  scriptplan ingest --tenant shop-1 --rescan ./scan.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant id (overrides the batch file's tenant)")
	cmd.Flags().BoolVar(&opts.Rescan, "rescan", false, "refresh classification of already stored scripts")

	return cmd
}

func runIngest(opts *IngestOptions, path string, cmd *cobra.Command) error {
	logger := opts.logger(cmd)

	batch, err := ingest.LoadBatch(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load batch", err)
	}

	tenant := opts.Tenant
	if tenant == "" {
		tenant = batch.Tenant
	}
	if tenant == "" {
		return NewExitError(ExitCommandError, "tenant is required: pass --tenant or set tenant in the batch file")
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(logger, st)

	logger.Info("ingesting batch", "tenant", tenant, "file", path, "candidates", len(batch.Candidates))

	in := ingest.NewIngester(st, opts.IDs, logger)
	stats, err := in.Ingest(cmd.Context(), tenant, batch.Candidates, ingest.Options{Rescan: opts.Rescan})
	if err != nil {
		return WrapExitError(ExitCommandError, "ingestion failed", err)
	}

	result := IngestResult{Tenant: tenant, Candidates: len(batch.Candidates), Stats: stats}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := f.Success(result, func(w io.Writer) { writeIngestText(w, result) }); err != nil {
		return err
	}

	if stats.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d candidate(s) failed", stats.Failed))
	}
	return nil
}

func writeIngestText(w io.Writer, r IngestResult) {
	fmt.Fprintf(w, "Ingested %d candidate(s) for tenant %s\n", r.Candidates, r.Tenant)
	fmt.Fprintf(w, "  Created:    %d\n", r.Stats.Created)
	fmt.Fprintf(w, "  Updated:    %d\n", r.Stats.Updated)
	fmt.Fprintf(w, "  Duplicates: %d\n", r.Stats.Duplicates)
	fmt.Fprintf(w, "  Failed:     %d\n", r.Stats.Failed)
}
