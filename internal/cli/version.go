package cli

import "github.com/spf13/cobra"

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	})
}
