package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/covidflights/flightmatrix/config"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flightmatrix",
	Short: "Aggregate flight lists and case counts into weekly matrices",
	Long: `flightmatrix turns OpenSky flight lists and ECDC case counts into the
small JSON artifacts the chord diagram and timeline read: weekly origin x
destination flight matrices, weekly case/death/incidence figures, and
country-to-country distances.`,
	SilenceUsage: true,
}

// Execute runs the CLI, exiting non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flightmatrix:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "flightmatrix.yaml", "config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error); overrides the config")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// loadConfig reads .env, the config file and the environment, then applies
// the log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.Context(), cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	logger.WithField("config", cfgFile).Debug("config loaded")

	return cfg, nil
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
