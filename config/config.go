// Package config loads the run configuration: a YAML file over built-in
// defaults, then FLIGHTMATRIX_* environment variables (a .env file counts)
// over both.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	fm "github.com/covidflights/flightmatrix"
)

const EnvPrefix = "FLIGHTMATRIX_"

var (
	// ErrNoFlightInputs is returned when no flight lists are configured
	ErrNoFlightInputs = errors.New("at least one flight list pattern is required")
	// ErrNoCaseInputs is returned when no case feeds are configured
	ErrNoCaseInputs = errors.New("at least one case feed is required")
	// ErrNoOutputDir is returned when the output location is empty
	ErrNoOutputDir = errors.New("output dir is required")
)

type Config struct {
	// Logging level
	LogLevel string `yaml:"logLevel" default:"info" env:"LOG_LEVEL, overwrite"`

	// Files read in parallel by the flights stage
	Workers int `yaml:"workers" default:"4" env:"WORKERS, overwrite"`

	// Countries that keep their own codes on the axis; everything else
	// collapses to a continent
	Bloc []string `yaml:"bloc" env:"BLOC, overwrite"`

	// Airport class both ends of a flight must have
	AirportClass string `yaml:"airportClass" default:"large_airport" env:"AIRPORT_CLASS, overwrite"`

	// Rows between progress lines when reading flight lists
	ProgressEvery int `yaml:"progressEvery" default:"1000000" env:"PROGRESS_EVERY, overwrite"`

	Inputs  Inputs  `yaml:"inputs"`
	Output  Output  `yaml:"output"`
	Matrix  Matrix  `yaml:"matrix"`
	Cases   Cases   `yaml:"cases"`
	Publish Publish `yaml:"publish"`
	Server  Server  `yaml:"server"`

	// node_exporter textfile to write run metrics to; empty for none
	MetricsTextfile string `yaml:"metricsTextfile" env:"METRICS_TEXTFILE, overwrite"`
}

// Inputs are local paths or gs:// names; patterns may use glob syntax.
type Inputs struct {
	Airports string   `yaml:"airports" default:"data/flights/_supplementary-data/airports.csv" env:"AIRPORTS, overwrite"`
	Flights  []string `yaml:"flights" default:"[\"data/flights/raw/flightlist_*.csv*\"]" env:"FLIGHTS, overwrite"`
	Cases    []string `yaml:"cases" default:"[\"data/covid19/raw/data.csv\",\"data/covid19/raw/data-swiss.csv\"]" env:"CASES, overwrite"`
}

// Output names are relative to Dir, which may be a gs:// location.
type Output struct {
	Dir             string `yaml:"dir" default:"data" env:"OUTPUT_DIR, overwrite"`
	RegionsCSV      string `yaml:"regionsCSV" default:"flights/aggregated/flights_regions.csv"`
	CountriesCSV    string `yaml:"countriesCSV" default:"flights/aggregated/flights_countries.csv"`
	RegionsMatrix   string `yaml:"regionsMatrix" default:"flights/output/flights_regions.json"`
	CountriesMatrix string `yaml:"countriesMatrix" default:"flights/output/flights_countries.json"`
	Covid           string `yaml:"covid" default:"covid19/output/covid19.json"`
	Distances       string `yaml:"distances" default:"geodata/output/distances.json"`
	BigQueryStaging string `yaml:"bigqueryStaging" default:"bigquery"`
}

type Matrix struct {
	// Zero out cells with a continent at either end
	ExcludeExternal bool `yaml:"excludeExternal" env:"EXCLUDE_EXTERNAL, overwrite"`
}

type Cases struct {
	WindowDays int `yaml:"windowDays" default:"7" env:"CASES_WINDOW_DAYS, overwrite"`
}

type Publish struct {
	Project  string `yaml:"project" env:"BQ_PROJECT, overwrite"`
	Dataset  string `yaml:"dataset" default:"covidflights" env:"BQ_DATASET, overwrite"`
	Table    string `yaml:"table" default:"pair_weeks" env:"BQ_TABLE, overwrite"`
	Staging  string `yaml:"staging" env:"BQ_STAGING, overwrite"` // gs://bucket/prefix
	SkipLoad bool   `yaml:"skipLoad" env:"BQ_SKIP_LOAD, overwrite"`
}

type Server struct {
	Addr string `yaml:"addr" default:":8080" env:"ADDR, overwrite"`
	Dir  string `yaml:"dir" default:"dist" env:"SERVE_DIR, overwrite"`
}

// {{{ Load

// Load builds a Config from defaults, then the YAML file at path (a missing
// file is fine), then the environment.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, &fm.FileError{Op: "read", Path: path, Err: err}
		}
		if err == nil {
			if err := yaml.Unmarshal(yamlFile, config); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   config,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if len(config.Bloc) == 0 {
		config.Bloc = append([]string{}, fm.DefaultBloc...)
	}

	return config, nil
}

// LoadDotEnv pulls a .env file into the process environment, if there is one.
// Variables already set win.
func LoadDotEnv(filenames ...string) error {
	for _, f := range filenames {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// }}}
// {{{ c.Validate

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, not %d", c.Workers)
	}
	if fm.ParseAirportClass(c.AirportClass) == fm.UnknownClass {
		return fmt.Errorf("unknown airport class %q", c.AirportClass)
	}
	if c.Inputs.Airports == "" {
		return fmt.Errorf("inputs.airports is required")
	}
	if len(c.Inputs.Flights) == 0 {
		return ErrNoFlightInputs
	}
	if len(c.Inputs.Cases) == 0 {
		return ErrNoCaseInputs
	}
	if c.Output.Dir == "" {
		return ErrNoOutputDir
	}
	if c.Cases.WindowDays < 1 {
		return fmt.Errorf("cases.windowDays must be at least 1, not %d", c.Cases.WindowDays)
	}

	// Bloc codes are upper-case ISO alpha-2
	for _, cc := range c.Bloc {
		if len(cc) != 2 || cc[0] < 'A' || cc[0] > 'Z' || cc[1] < 'A' || cc[1] > 'Z' {
			return fmt.Errorf("bad bloc country code %q", cc)
		}
	}

	return nil
}

// }}}

func (c *Config) BlocSet() fm.Bloc { return fm.NewBloc(c.Bloc) }

func (c *Config) Class() fm.AirportClass { return fm.ParseAirportClass(c.AirportClass) }

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
