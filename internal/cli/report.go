package cli

import (
	"github.com/bastiangx/dynlm/pkg/report"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "report FILE.msgpack",
		Short: "Print a saved report bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := report.ReadBundle(args[0])
			if err != nil {
				return err
			}
			return renderBundle(cmd.OutOrStdout(), b)
		},
	})
}
