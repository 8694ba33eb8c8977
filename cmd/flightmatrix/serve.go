package main

import (
	"github.com/spf13/cobra"

	"github.com/covidflights/flightmatrix/server"
	"github.com/covidflights/flightmatrix/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and its data files locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		scfg := server.Config{Addr: cfg.Server.Addr, SiteDir: cfg.Server.Dir}
		if store.IsGCS(cfg.Output.Dir) {
			logger.WithField("output", cfg.Output.Dir).Warn("output is in GCS; not serving /data")
		} else {
			scfg.DataDir = cfg.Output.Dir
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return server.Serve(ctx, server.New(scfg, logger), scfg.Addr, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides the config)")
	rootCmd.AddCommand(serveCmd)
}
