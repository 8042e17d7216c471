package cmd

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat string
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Report the strongest positive and negative measurement correlations",
	Long: `Load a CSV/TSV/XLSX fitness export, keep the recognized numeric columns and
report the extreme correlation pairs, a per-column schema and the top pairs by |r|.

Output formats: markdown (default) or json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(analyzeFormat))
		if format != "markdown" && format != "md" && format != "json" {
			return fmt.Errorf("unsupported format: %s (use markdown|json)", analyzeFormat)
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
		doc := out.Document()
		var b []byte
		if format == "json" {
			if b, err = doc.JSON(); err != nil {
				return err
			}
		} else {
			b = []byte(doc.Markdown())
		}
		return writeOutput(cmd, analyzeOutput, withNewline(b))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "markdown", "output format: markdown|json")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report to this file instead of stdout")
}
