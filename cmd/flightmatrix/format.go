package main

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/matrix"
	"github.com/covidflights/flightmatrix/pipeline"
	"github.com/covidflights/flightmatrix/store"
)

var (
	formatGranularity     string
	formatInput           string
	formatExcludeExternal bool
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Turn an aggregated pair CSV into matrix JSON",
	Long: `Reads a flights_{regions,countries}.csv written by 'run flights' and
writes the matching matrix JSON, without re-reading any flight lists.`,
	Args: cobra.NoArgs,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringVar(&formatGranularity, "granularity", "countries", "countries or regions")
	formatCmd.Flags().StringVar(&formatInput, "input", "", "pair CSV to read (default: the configured aggregated CSV)")
	formatCmd.Flags().BoolVar(&formatExcludeExternal, "exclude-external", false, "zero cells with a continent at either end")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := fm.ParseGranularity(formatGranularity)
	if err != nil {
		return err
	}

	csvName, jsonName := cfg.Output.CountriesCSV, cfg.Output.CountriesMatrix
	if g == fm.RegionLevel {
		csvName, jsonName = cfg.Output.RegionsCSV, cfg.Output.RegionsMatrix
	}
	input := formatInput
	if input == "" {
		input = store.Join(cfg.Output.Dir, csvName)
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

	opt := matrix.Options{ExcludeExternal: formatExcludeExternal || cfg.Matrix.ExcludeExternal}
	var buf bytes.Buffer
	m, err := pipeline.Format(ctx, src, input, opt, &buf)
	if err != nil {
		return err
	}
	if err := m.Check(); err != nil {
		return err
	}
	if err := sink.Put(ctx, jsonName, buf.Bytes(), "application/json"); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"axis":  len(m.Countries),
		"weeks": len(m.YearMonth),
	}).Info("matrix written")
	fmt.Println(sink.Location(jsonName))
	return nil
}
