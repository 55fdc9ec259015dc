// Package cli wires the riskaudit commands.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/riskaudit/internal/tui"
)

// NewRootCommand builds the riskaudit command tree. Without a subcommand it
// launches the terminal UI.
func NewRootCommand() *cobra.Command {
	opts := globalOptions{}
	root := &cobra.Command{
		Use:           "riskaudit",
		Short:         "Guided information security audit notes",
		Long:          "Walks an auditor through the stages of an information security audit for the chosen organisation scale and stores the notes for each stage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.projectDir, "dir", ".", "project directory holding .riskaudit/")
	root.PersistentFlags().StringVar(&opts.storePath, "db", "", "record store path (overrides RISKAUDIT_DB and config)")

	root.AddCommand(
		newRecordsCommand(&opts),
		newStagesCommand(&opts),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(ctx context.Context, opts globalOptions) error {
	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(rt.catalog, rt.store,
		tui.WithLogbook(rt.logbook),
		tui.WithLogger(rt.logger.Logger),
		tui.WithContext(ctx),
	)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
