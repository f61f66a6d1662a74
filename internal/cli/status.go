package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/store"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <asset-id> <status>",
		Short: "Move an asset through its migration lifecycle",
		Long: `Set the migration status of an asset.

Allowed transitions are pending -> in_progress -> completed, and any
status -> skipped. Completed and skipped assets leave the plan on the
next run and no longer block the assets that depended on them.

Example:
  scriptplan status 0192f0c4-7a1e-7cc2-9d5e-3b1f2a8e4c11 in_progress`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], asset.Status(args[1]), cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, id string, to asset.Status, cmd *cobra.Command) error {
	if !to.Valid() {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown status %q: must be one of pending, in_progress, completed, skipped", to))
	}

	logger := opts.logger(cmd)

	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(logger, st)

	a, err := st.UpdateStatus(cmd.Context(), id, to)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return WrapExitError(ExitCommandError, "asset not found", err)
	case errors.Is(err, asset.ErrInvalidTransition):
		return WrapExitError(ExitFailure, "status change rejected", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to update status", err)
	}

	logger.Info("status updated", "asset_id", id, "tenant", a.TenantID, "status", a.Status)

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return f.Success(a, func(w io.Writer) {
		fmt.Fprintf(w, "%s is now %s\n", a.ID, a.Status)
	})
}
