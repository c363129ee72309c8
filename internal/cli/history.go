package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max runs")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderHistory(runs))
	return nil
}
