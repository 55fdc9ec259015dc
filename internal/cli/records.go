package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/riskaudit/internal/report"
)

func newRecordsCommand(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Print every stored audit record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			recs, err := rt.store.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), f, recs)
		},
	}
	names := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		names[i] = string(f)
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), fmt.Sprintf("output format (%s)", strings.Join(names, ", ")))
	return cmd
}
