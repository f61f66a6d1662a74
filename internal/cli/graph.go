package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/depgraph"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Tenant    string
	RulesFile string
	DOT       bool
}

// GraphOutput is the graph command's output.
type GraphOutput struct {
	TenantID string          `json:"tenant_id"`
	Graph    *depgraph.Graph `json:"graph"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the inferred dependency graph",
		Long: `Show the dependency graph of a tenant's pending and in-progress assets.

Nothing is written. Edges point from a dependency to the asset that must
wait for it. Suggested-order edges chain consecutive steps of the
migration order and are not constraints.

Example:
  scriptplan graph --tenant shop-1
  scriptplan graph --tenant shop-1 --dot | dot -Tsvg > graph.svg`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "CUE rules file (default $SCRIPTPLAN_RULES or built-in)")
	cmd.Flags().BoolVar(&opts.DOT, "dot", false, "render Graphviz DOT instead of text")

	return cmd
}

func runGraph(opts *GraphOptions, cmd *cobra.Command) error {
	p, done, err := opts.newPlanner(cmd, opts.RulesFile)
	if err != nil {
		return err
	}
	defer done()

	plan, err := p.Plan(cmd.Context(), opts.Tenant)
	if err != nil {
		return WrapExitError(ExitCommandError, "planning failed", err)
	}

	if opts.DOT {
		writeDOT(cmd.OutOrStdout(), plan.Graph)
		return nil
	}

	out := GraphOutput{TenantID: opts.Tenant, Graph: plan.Graph}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return f.Success(out, func(w io.Writer) { writeGraphText(w, out) })
}

func writeGraphText(w io.Writer, out GraphOutput) {
	g := out.Graph
	fmt.Fprintf(w, "Dependency graph for tenant %s\n", out.TenantID)
	fmt.Fprintf(w, "Nodes: %d, dependency edges: %d\n", len(g.Nodes), len(g.DependencyEdges()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Order ===")
	if len(g.SuggestedOrder) == 0 {
		fmt.Fprintln(w, "  (no assets)")
	}
	for i, id := range g.SuggestedOrder {
		n, _ := g.Node(id)
		fmt.Fprintf(w, "  %d. %s", i+1, id)
		if len(n.Dependencies) > 0 {
			fmt.Fprintf(w, " (after %s)", strings.Join(n.Dependencies, ", "))
		}
		fmt.Fprintln(w)
	}

	if len(g.Cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Cycles ===")
		for _, c := range g.Cycles {
			fmt.Fprintf(w, "  %s\n", c.Message)
		}
	}
}

// writeDOT renders dependency edges solid and order edges dashed.
func writeDOT(w io.Writer, g *depgraph.Graph) {
	fmt.Fprintln(w, "digraph dependencies {")
	fmt.Fprintln(w, "  rankdir=LR;")
	for _, n := range g.Nodes {
		fmt.Fprintf(w, "  %q;\n", n.ID)
	}
	for _, e := range g.Edges {
		style := ""
		if e.Type == depgraph.EdgeSuggestedOrder {
			style = " [style=dashed]"
		}
		fmt.Fprintf(w, "  %q -> %q%s;\n", e.From, e.To, style)
	}
	fmt.Fprintln(w, "}")
}
