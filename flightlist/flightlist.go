// Package flightlist turns flight-list files into weekly pair counts, at
// region and at country granularity.
package flightlist

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skypies/util/histogram"
	"golang.org/x/sync/errgroup"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/metrics"
	"github.com/covidflights/flightmatrix/store"
	"github.com/covidflights/flightmatrix/tabular"
)

const (
	DefaultProgressEvery = 1000000
	ctxCheckEvery        = 4096
)

// Lookup is satisfied by *ref.AirportTable.
type Lookup interface {
	Lookup(ident string) (fm.Airport, bool)
}

type Options struct {
	Bloc          fm.Bloc
	Class         fm.AirportClass // endpoints must be this class; default large_airport
	ProgressEvery int             // rows between progress lines; 0 for the default
	Logger        logrus.FieldLogger
	Metrics       *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Bloc == nil {
		o.Bloc = fm.NewBloc(fm.DefaultBloc)
	}
	if o.Class == fm.UnknownClass {
		o.Class = fm.LargeAirport
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

// Aggregator owns its accumulators outright. Parallel runs give each worker
// its own Aggregator and Merge them afterwards.
type Aggregator struct {
	airports Lookup
	opts     Options

	Regions   *accum.Accumulator
	Countries *accum.Accumulator
	Stats     Stats
}

func NewAggregator(airports Lookup, opts Options) *Aggregator {
	return &Aggregator{
		airports:  airports,
		opts:      opts.withDefaults(),
		Regions:   accum.New(),
		Countries: accum.New(),
	}
}

// {{{ ag.Process

// Process classifies one flight and, if it survives the filters, counts it
// in both accumulators.
func (ag *Aggregator) Process(f fm.Flight) Outcome {
	o := ag.process(f)
	ag.Stats.Add(o)
	return o
}

func (ag *Aggregator) process(f fm.Flight) Outcome {
	if f.Origin == "" || f.Destination == "" || f.Day.IsZero() {
		return Malformed
	}
	if f.IsSelfLoop() {
		return SelfLoop
	}

	orig, ok1 := ag.airports.Lookup(f.Origin)
	dest, ok2 := ag.airports.Lookup(f.Destination)
	if !ok1 || !ok2 {
		return UnknownAirport
	}
	if orig.Class != ag.opts.Class || dest.Class != ag.opts.Class {
		return ClassFiltered
	}

	week := f.Week()
	ag.Regions.Add(fm.Pair{
		Origin:      fm.Classify(orig, fm.RegionLevel, ag.opts.Bloc).String(),
		Destination: fm.Classify(dest, fm.RegionLevel, ag.opts.Bloc).String(),
	}, week)
	ag.Countries.Add(fm.Pair{
		Origin:      fm.Classify(orig, fm.CountryLevel, ag.opts.Bloc).String(),
		Destination: fm.Classify(dest, fm.CountryLevel, ag.opts.Bloc).String(),
	}, week)

	return Retained
}

// }}}
// {{{ ag.ReadFrom

// ReadFrom streams one flight list, a row at a time. Bad rows are counted as
// Malformed; a file without the needed columns, or one that fails mid-read,
// is an error. Returns this file's share of the stats.
func (ag *Aggregator) ReadFrom(ctx context.Context, name string, rdr io.Reader) (Stats, error) {
	log := ag.opts.Logger.WithField("file", name)
	before := ag.Stats
	tStart := time.Now()

	rowReader := tabular.NewRowReader(name, rdr)
	if err := rowReader.HasColumns(ColOrigin, ColDestination, ColDay); err != nil {
		return Stats{}, err
	}

	for i := 1; ; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return ag.Stats.Sub(before), err
			}
		}

		row, err := rowReader.Read()
		if err == io.EOF {
			break
		} else if fm.IsRowError(err) {
			log.WithError(err).Debug("skipping row")
			ag.Stats.Add(Malformed)
			continue
		} else if err != nil {
			return ag.Stats.Sub(before), &fm.FileError{Op: "read", Path: name, Err: err}
		}

		f, err := ParseFlight(row)
		if err != nil {
			log.WithField("line", rowReader.Line()).WithError(err).Debug("skipping row")
			ag.Stats.Add(Malformed)
		} else {
			ag.Process(f)
		}

		if i%ag.opts.ProgressEvery == 0 {
			s := ag.Stats.Sub(before)
			log.WithFields(logrus.Fields{"rows": s.Rows, "retained": s.Retained}).Info("progress")
		}
	}

	s := ag.Stats.Sub(before)
	for outcome, n := range s.ByOutcome() {
		ag.opts.Metrics.FlightOutcome(outcome, n)
	}
	ag.opts.Metrics.FlightFileDone()

	log.WithFields(logrus.Fields{
		"rows":     s.Rows,
		"retained": s.Retained,
		"skipped":  s.Rows - s.Retained,
		"took":     time.Since(tStart).Round(time.Millisecond),
	}).Info("flight list read")

	return s, nil
}

// }}}
// {{{ ag.Merge

func (ag *Aggregator) Merge(other *Aggregator) {
	ag.Regions.Merge(other.Regions)
	ag.Countries.Merge(other.Countries)
	ag.Stats.Merge(other.Stats)
}

// }}}

// {{{ AggregateFiles

type FileSummary struct {
	Name    string
	Stats   Stats
	Elapsed time.Duration
}

type Summary struct {
	Files []FileSummary
	Stats Stats
}

// Histograms renders per-file timing and size distributions.
func (s Summary) Histograms() string {
	h := histogram.NewSet(3600 * 1000) // millis; an hour per file is plenty
	for _, f := range s.Files {
		h.RecordValue("file-millis", f.Elapsed.Milliseconds())
		h.RecordValue("file-kilorows", int64(f.Stats.Rows/1000))
	}
	return h.String()
}

func loadFile(ctx context.Context, src store.Source, name string, ag *Aggregator) (FileSummary, error) {
	tStart := time.Now()
	rc, err := src.Open(ctx, name)
	if err != nil {
		return FileSummary{}, err
	}
	defer rc.Close()

	s, err := ag.ReadFrom(ctx, name, rc)
	if err != nil {
		return FileSummary{}, fmt.Errorf("flightlist.ReadFrom '%s': %w", name, err)
	}
	return FileSummary{Name: name, Stats: s, Elapsed: time.Since(tStart)}, nil
}

// AggregateFiles reads every named flight list. With workers > 1 files are read
// concurrently, each into its own Aggregator, merged once all have finished.
// Any file that cannot be opened or read aborts the whole run.
func AggregateFiles(ctx context.Context, src store.Source, names []string, airports Lookup, opts Options, workers int) (*Aggregator, Summary, error) {
	total := NewAggregator(airports, opts)
	summary := Summary{Files: make([]FileSummary, len(names))}

	if workers <= 1 {
		for i, name := range names {
			total.opts.Logger.WithField("file", name).Infof("[%d/%d] loading", i+1, len(names))
			fs, err := loadFile(ctx, src, name, total)
			if err != nil {
				return nil, Summary{}, err
			}
			summary.Files[i] = fs
		}
		summary.Stats = total.Stats
		return total, summary, nil
	}

	shards := make([]*Aggregator, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			shard := NewAggregator(airports, opts)
			fs, err := loadFile(gctx, src, name, shard)
			if err != nil {
				return err
			}
			shards[i] = shard
			summary.Files[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	for _, shard := range shards {
		total.Merge(shard)
	}
	summary.Stats = total.Stats
	return total, summary, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
