package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/report"
	"github.com/KaramelBytes/fitcorr/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	heatmapFormat string
	heatmapOutput string
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap [file]",
	Short: "Print the correlation matrix in long format (variable_1, variable_2, correlation)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(heatmapFormat))
		if format != "csv" && format != "json" {
			return fmt.Errorf("unsupported format: %s (use csv|json)", heatmapFormat)
		}
		p, closeCache, err := newPipeline(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer closeCache()

		out, err := p.RunFile(cmd.Context(), dataPath(args))
		if err != nil {
			return err
		}
		cells := out.Result.Heatmap()
		if cells == nil {
			cells = []analysis.Cell{}
		}
		var b []byte
		if format == "json" {
			if b, err = utils.PrettyJSON(cells); err != nil {
				return err
			}
			b = withNewline(b)
		} else {
			var buf bytes.Buffer
			if err := report.WriteHeatmapCSV(&buf, cells); err != nil {
				return err
			}
			b = buf.Bytes()
		}
		return writeOutput(cmd, heatmapOutput, b)
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	heatmapCmd.Flags().StringVar(&heatmapFormat, "format", "csv", "output format: csv|json")
	heatmapCmd.Flags().StringVarP(&heatmapOutput, "output", "o", "", "write to this file instead of stdout")
}
