package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/covidflights/flightmatrix/metrics"
	"github.com/covidflights/flightmatrix/pipeline"
	"github.com/covidflights/flightmatrix/store"
)

var (
	runDryRun  bool
	runWorkers int
	runOutput  string
)

var runCmd = &cobra.Command{
	Use:   "run [stage...]",
	Short: "Run pipeline stages, and whatever they depend on",
	Long: `Run the named stages (default: all but publish). Stages:

  airports    load the airport table
  flights     aggregate flight lists into weekly pair counts (CSV)
  matrices    lay the pair counts out as per-week matrices (JSON)
  distances   country centroids and distances (JSON)
  cases       weekly cases, deaths and incidence (JSON)
  publish     load pair counts into BigQuery`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the plan and stop")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "flight lists read in parallel (overrides the config)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output dir or gs:// location (overrides the config)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runWorkers > 0 {
		cfg.Workers = runWorkers
	}
	if runOutput != "" {
		cfg.Output.Dir = runOutput
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	src := store.NewOpener()
	defer src.Close()

	sink, err := store.NewSink(ctx, cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer sink.Close()

	runner, err := pipeline.NewRunner(cfg, src, sink, metrics.New(), logger)
	if err != nil {
		return err
	}

	if runDryRun {
		targets := args
		if len(targets) == 0 {
			targets = runner.DefaultTargets()
		}
		plan, err := runner.Graph().Plan(targets)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(plan, " -> "))
		return nil
	}

	st, err := runner.Run(ctx, args...)
	if err != nil {
		return err
	}

	for _, w := range st.Written {
		fmt.Println(w)
	}
	for _, p := range st.Published {
		fmt.Println(p)
	}
	return nil
}
