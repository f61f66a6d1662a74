package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/planner"
	"github.com/roach88/scriptplan/internal/rules"
	"github.com/roach88/scriptplan/internal/scoring"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Tenant     string
	RulesFile  string
	DryRun     bool
	ByPriority bool
}

// PlanOutput is the plan command's output.
type PlanOutput struct {
	DryRun bool `json:"dry_run"`
	*planner.Result
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the migration plan and annotate assets",
		Long: `Compute a dependency-respecting migration plan for a tenant.

Dependencies are inferred for every pending and in-progress asset, then
assets are ordered so that each comes after the assets it depends on.
Each asset gets a priority (0-100) and a time estimate. Dependency
cycles are reported and broken; they never stop planning.

Unless --dry-run is set, the computed dependencies, priorities and
estimates are written back onto the assets. A failed write leaves that
asset's previous annotations in place and exits 1.

Example:
  scriptplan plan --tenant shop-1
  scriptplan plan --tenant shop-1 --dry-run --by-priority
  scriptplan plan --tenant shop-1 --rules ./rules.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "CUE rules file (default $SCRIPTPLAN_RULES or built-in)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute the plan without writing annotations")
	cmd.Flags().BoolVar(&opts.ByPriority, "by-priority", false, "list steps by descending priority instead of migration order")

	return cmd
}

// loadRules resolves the rules file from the flag, then the environment.
func (o *RootOptions) loadRules(flag string) (rules.Rules, error) {
	path := flag
	if path == "" {
		path = o.config().RulesFile
	}
	if path == "" {
		return rules.Default(), nil
	}
	r, err := rules.LoadFile(path)
	if err != nil {
		return rules.Rules{}, WrapExitError(ExitCommandError, "failed to load rules", err)
	}
	return r, nil
}

// newPlanner opens the store and builds a planner from config.
func (o *RootOptions) newPlanner(cmd *cobra.Command, rulesFile string) (*planner.Planner, func(), error) {
	r, err := o.loadRules(rulesFile)
	if err != nil {
		return nil, nil, err
	}

	st, err := o.openStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg := o.config()
	logger := o.logger(cmd)
	p := planner.New(st, planner.Options{
		Rules:            r,
		WriteConcurrency: cfg.WriteConcurrency,
		WriteRate:        cfg.WriteRate,
		WriteRetries:     cfg.WriteRetries,
		Logger:           logger,
	})
	return p, func() { closeStore(logger, st) }, nil
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	p, done, err := opts.newPlanner(cmd, opts.RulesFile)
	if err != nil {
		return err
	}
	defer done()

	ctx := cmd.Context()
	out := PlanOutput{DryRun: opts.DryRun}

	var runErr error
	if opts.DryRun {
		plan, err := p.Plan(ctx, opts.Tenant)
		if err != nil {
			return WrapExitError(ExitCommandError, "planning failed", err)
		}
		out.Result = &planner.Result{Plan: plan, Failures: []planner.WriteFailure{}}
	} else {
		out.Result, runErr = p.Run(ctx, opts.Tenant)
		if out.Result == nil {
			return WrapExitError(ExitCommandError, "planning failed", runErr)
		}
	}

	if opts.ByPriority {
		out.Plan.Steps = out.Plan.ByPriority()
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := f.Success(out, func(w io.Writer) { writePlanText(w, out, opts.Verbose) }); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "write-back interrupted", runErr)
	}
	if n := len(out.Failures); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d annotation write(s) failed", n))
	}
	return nil
}

func writePlanText(w io.Writer, out PlanOutput, verbose bool) {
	plan := out.Plan
	fmt.Fprintf(w, "Migration plan for tenant %s (%d asset(s))\n", plan.TenantID, len(plan.Steps))
	fmt.Fprintln(w)

	if len(plan.Steps) == 0 {
		fmt.Fprintln(w, "  (nothing left to migrate)")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tASSET\tCATEGORY\tPLATFORM\tPRIORITY\tESTIMATE\tAFTER")
		for _, s := range plan.Steps {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d\t%s\t%s\n",
				s.Position,
				stepLabel(s),
				s.Category,
				dash(s.Platform),
				s.Priority.Priority,
				scoring.FormatRange(s.Estimate.MinMinutes, s.Estimate.MaxMinutes),
				dash(strings.Join(s.Dependencies, ", ")),
			)
		}
		tw.Flush()
	}

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Reasons ===")
		for _, s := range plan.Steps {
			fmt.Fprintf(w, "  %s: %s; %s\n", s.AssetID, s.Priority.Reason, s.Estimate.Reason)
		}
	}

	if len(plan.Cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Cycles ===")
		for _, c := range plan.Cycles {
			fmt.Fprintf(w, "  %s\n", c.Message)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total estimate: %s (%s expected)\n",
		plan.Summary.Formatted, scoring.FormatMinutes(plan.Summary.TotalEstimatedMinutes))

	if out.DryRun {
		fmt.Fprintln(w, "Dry run: no annotations written")
		return
	}
	fmt.Fprintf(w, "Annotations written: %d/%d\n", out.Written, len(plan.Steps))
	for _, fl := range out.Failures {
		fmt.Fprintf(w, "  FAILED %s after %d attempt(s): %s\n", fl.AssetID, fl.Attempts, fl.Error)
	}
}

func stepLabel(s planner.Step) string {
	if s.Name == "" {
		return s.AssetID
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.AssetID)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
