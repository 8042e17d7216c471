package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/fitcorr/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the correlation dashboard API",
	Long: `Serve a JSON API over the configured data file: summary, matrix, heatmap,
extreme pairs and scatter PNGs, plus /healthz and Prometheus /metrics.
The file is re-read on every request; unchanged content is served from cache.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		p, closeCache, err := newPipeline(reg)
		if err != nil {
			return err
		}
		defer closeCache()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(p, cfg.DataPath(), reg, logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
