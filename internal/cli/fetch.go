package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/pipeline"
)

// fetchCommand creates the fetch command for downloading a case's network.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <case-id>",
		Short: "Fetch a case's money flow network from the backend",
		Long: `Fetch a case's money flow network from the case-management backend.

The network is normalized and written as a network.json file that 'layout'
and 'export' can reuse. Responses are cached locally; use --refresh to force
a fresh fetch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: case-<id>.network.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and fetch fresh data")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, caseID, output string, noCache, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{CaseID: caseID, Refresh: refresh, Logger: c.Logger}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching network for case %s...", caseID))
	spinner.Start()

	n, cacheHit, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch network: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = fmt.Sprintf("case-%s.network.json", caseID)
	}

	if err := graph.WriteNetworkFile(n, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Network fetched")
	printFile(outputPath)
	printStats(len(n.Entities), len(n.Relationships), cacheHit)
	printNewline()
	printNextStep("Compute layout", "casegraph layout "+caseID)

	return nil
}
