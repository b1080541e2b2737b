package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casegraph/casegraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing network layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout <case-id>",
		Short: "Compute the hierarchical layout for a case network",
		Long: `Compute the hierarchical layout for a case's money flow network.

The network is fetched from the backend, optionally filtered by cluster, risk
level, or entity type, and laid out left to right: money sources (victims)
on the left, destinations on the right. The output is a layout.json document
that 'export' can render to DOT or SVG.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CaseID = args[0]
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: case-<id>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and fetch fresh data")

	// Filter flags
	cmd.Flags().StringSliceVar(&opts.Clusters, "cluster", nil, "keep only entities in these clusters")
	cmd.Flags().StringSliceVar(&opts.Risks, "risk", nil, "keep only entities at these risk levels (critical, high, medium, low, unknown)")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "keep only entities of these types (person, bank_account, ...)")

	// Layout flags
	cmd.Flags().Float64Var(&opts.LevelSpacing, "level-spacing", 0, "horizontal distance between levels (default 350)")
	cmd.Flags().Float64Var(&opts.NodeSpacing, "node-spacing", 0, "vertical distance between entities in a level (default 150)")

	return cmd
}

// runLayout fetches the network, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.Formats = []string{pipeline.FormatJSON}
	applyLayoutConfig(&opts, cfg.Layout)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = fmt.Sprintf("case-%s.layout.json", opts.CaseID)
	}

	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.EntityCount, result.Stats.RelationshipCount, result.CacheInfo.LayoutHit)
	if dangling := len(result.Layout.DanglingRelationships); dangling > 0 {
		printDetail("%d relationships reference missing entities and were skipped", dangling)
	}
	printNewline()
	printNextStep("Render", "casegraph export "+opts.CaseID+" -f svg")

	return nil
}
