package cmd

import (
	"fmt"

	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the measurement columns fitcorr recognizes",
	Long: `List the allow-listed measurement names in output order. Headers are matched
after trimming and replacing internal whitespace with underscores.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range dataset.AllowList() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
