package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/riskaudit/internal/workflow"
)

func newStagesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stages [scale]",
		Short: "List audit scales and their stages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			scales := rt.catalog.ListScales()
			if len(args) == 1 {
				scales = []workflow.ScaleID{workflow.ScaleID(args[0])}
			}
			for i, id := range scales {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := printScale(cmd.OutOrStdout(), rt.catalog, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printScale(w io.Writer, catalog *workflow.Catalog, id workflow.ScaleID) error {
	scale, err := catalog.Scale(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", scale.Title, scale.ID)
	for i, stageID := range scale.Stages {
		fmt.Fprintf(w, "  %d. %s [%s]\n", i+1, catalog.Title(stageID), stageID)
		fmt.Fprintf(w, "     %s\n", catalog.Describe(stageID))
	}
	return nil
}
