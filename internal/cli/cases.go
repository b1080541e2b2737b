package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// casesCommand creates the cases command for browsing the backend's case list.
func (c *CLI) casesCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List investigation cases from the backend",
		Long: `List investigation cases from the case-management backend.

With --interactive, an arrow-key picker is shown and the selected case ID is
printed, ready to feed into 'layout' or 'export'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCases(cmd.Context(), interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a case interactively")

	return cmd
}

func (c *CLI) runCases(ctx context.Context, interactive bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.newBackend(cfg)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Fetching cases...")
	spinner.Start()

	cases, err := client.ListCases(ctx)
	if err != nil {
		spinner.StopWithError("Failed to list cases")
		return fmt.Errorf("list cases: %w", err)
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Listed %d cases", len(cases)))

	if len(cases) == 0 {
		printInfo("No cases found")
		return nil
	}

	if !interactive {
		for _, cs := range cases {
			number := cs.Number
			if number == "" {
				number = cs.ID
			}
			fmt.Printf("%-12s %-40s %-12s %s\n",
				StyleValue.Render(number),
				cs.Title,
				StyleDim.Render(cs.Status),
				priorityStyle(cs.Priority).Render(cs.Priority))
		}
		return nil
	}

	model := NewCaseListModel(cases)
	prog := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("case picker: %w", err)
	}

	result, ok := final.(CaseListModel)
	if !ok || result.Selected == nil {
		printInfo("No case selected")
		return nil
	}

	selected := result.Selected
	printSuccess("Selected case %s", selected.Number)
	printDetail("%s", selected.Title)
	printNewline()
	printNextStep("Compute layout", "casegraph layout "+selected.ID)

	return nil
}
