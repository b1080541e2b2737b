package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casegraph/casegraph/pkg/pipeline"
)

// exportCommand creates the export command for rendering case networks.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export <case-id>",
		Short: "Render a case network to JSON, DOT, or SVG",
		Long: `Render a case's money flow network to one or more output formats.

The full pipeline runs: fetch, filter, layout, render. One file is written
per format, named <base>.<format>. Supported formats: json, dot, svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CaseID = args[0]
			opts.Formats = parseFormats(formats)
			return c.runExport(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base name (default: case-<id>)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "comma-separated output formats: json, dot, svg (default: svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and fetch fresh data")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include level, identifier, and risk in node labels")

	// Filter flags
	cmd.Flags().StringSliceVar(&opts.Clusters, "cluster", nil, "keep only entities in these clusters")
	cmd.Flags().StringSliceVar(&opts.Risks, "risk", nil, "keep only entities at these risk levels")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "keep only entities of these types")

	return cmd
}

// runExport runs the full pipeline and writes one file per format.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
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
	applyLayoutConfig(&opts, cfg.Layout)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering case %s...", opts.CaseID))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export case %s: %w", opts.CaseID, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = "case-" + opts.CaseID
	}

	printSuccess("Export complete")
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.EntityCount, result.Stats.RelationshipCount, result.CacheInfo.RenderHit)

	return nil
}
