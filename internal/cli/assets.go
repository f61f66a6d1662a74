package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/asset"
)

// AssetsOptions holds flags for the assets command.
type AssetsOptions struct {
	*RootOptions
	Tenant string
	All    bool
}

// NewAssetsCommand creates the assets command.
func NewAssetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List a tenant's assets",
		Long: `List a tenant's assets in ingestion order.

By default only pending and in-progress assets are shown. Use --all to
include completed and skipped ones. Priority and estimate columns show
the annotations of the last plan run.

Example:
  scriptplan assets --tenant shop-1
  scriptplan assets --tenant shop-1 --all --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include completed and skipped assets")

	return cmd
}

func runAssets(opts *AssetsOptions, cmd *cobra.Command) error {
	logger := opts.logger(cmd)

	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(logger, st)

	list := st.ListNonTerminalAssets
	if opts.All {
		list = st.ListAssets
	}
	assets, err := list(cmd.Context(), opts.Tenant)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list assets", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return f.Success(assets, func(w io.Writer) { writeAssetsText(w, assets) })
}

func writeAssetsText(w io.Writer, assets []asset.Asset) {
	if len(assets) == 0 {
		fmt.Fprintln(w, "No assets found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tPLATFORM\tRISK\tMIGRATION\tSTATUS\tPRIORITY\tESTIMATE")
	for _, a := range assets {
		priority, estimate := "-", "-"
		if a.AnnotatedAt != nil {
			priority = fmt.Sprintf("%d", a.Priority)
			estimate = fmt.Sprintf("%dm", a.EstimatedTimeMinutes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			a.Category,
			dash(a.Platform),
			a.RiskLevel,
			a.SuggestedMigration,
			a.Status,
			priority,
			estimate,
		)
	}
	tw.Flush()
}
