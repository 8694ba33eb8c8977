package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/sirupsen/logrus"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/covid"
	"github.com/covidflights/flightmatrix/flightlist"
	"github.com/covidflights/flightmatrix/geodata"
	"github.com/covidflights/flightmatrix/matrix"
	"github.com/covidflights/flightmatrix/publish"
	"github.com/covidflights/flightmatrix/ref"
	"github.com/covidflights/flightmatrix/store"
)

// {{{ airports

func (r *Runner) runAirports(ctx context.Context, st *State) error {
	at, err := ref.LoadAirports(ctx, r.src, r.cfg.Inputs.Airports)
	if err != nil {
		return err
	}
	st.Airports = at
	r.log.Info(at.String())
	return nil
}

// }}}
// {{{ flights

func (r *Runner) runFlights(ctx context.Context, st *State) error {
	names, err := store.ExpandAll(ctx, r.src, r.cfg.Inputs.Flights)
	if err != nil {
		return err
	}
	r.log.WithField("files", len(names)).Info("aggregating flight lists")

	opts := flightlist.Options{
		Bloc:          r.cfg.BlocSet(),
		Class:         r.cfg.Class(),
		ProgressEvery: r.cfg.ProgressEvery,
		Logger:        r.log,
		Metrics:       r.metrics,
	}
	ag, summary, err := flightlist.AggregateFiles(ctx, r.src, names, st.Airports, opts, r.cfg.Workers)
	if err != nil {
		return err
	}
	st.Flights, st.FlightSummary = ag, summary

	r.log.WithFields(logrus.Fields{
		"rows":            summary.Stats.Rows,
		"retained":        summary.Stats.Retained,
		"malformed":       summary.Stats.Malformed,
		"self_loop":       summary.Stats.SelfLoop,
		"unknown_airport": summary.Stats.UnknownAirport,
		"class_filtered":  summary.Stats.ClassFiltered,
		"pairs":           ag.Countries.Len(),
	}).Info("flight lists aggregated")
	r.log.Debugf("per-file stats:-\n%s", summary.Histograms())

	if err := r.put(ctx, st, r.cfg.Output.RegionsCSV, ag.Regions.WriteCSV); err != nil {
		return err
	}
	return r.put(ctx, st, r.cfg.Output.CountriesCSV, ag.Countries.WriteCSV)
}

// }}}
// {{{ matrices

func (r *Runner) runMatrices(ctx context.Context, st *State) error {
	opt := matrix.Options{ExcludeExternal: r.cfg.Matrix.ExcludeExternal}

	for _, out := range []struct {
		acc  *accum.Accumulator
		name string
	}{
		{st.Flights.Regions, r.cfg.Output.RegionsMatrix},
		{st.Flights.Countries, r.cfg.Output.CountriesMatrix},
	} {
		m := matrix.Build(out.acc, opt)
		if err := m.Check(); err != nil {
			return fmt.Errorf("%s: %w", out.name, err)
		}
		r.log.WithFields(logrus.Fields{"axis": len(m.Countries), "weeks": len(m.YearMonth)}).Debug(out.name)
		if err := r.put(ctx, st, out.name, m.WriteJSON); err != nil {
			return err
		}
	}
	return nil
}

// }}}
// {{{ distances

func (r *Runner) runDistances(ctx context.Context, st *State) error {
	geo, missing := geodata.Build(st.Airports, r.cfg.BlocSet())
	if len(missing) > 0 {
		r.log.WithField("countries", missing).Warn("no positioned airport; left out of distances")
	}
	st.Geo = geo
	return r.put(ctx, st, r.cfg.Output.Distances, geo.WriteJSON)
}

// }}}
// {{{ cases

func (r *Runner) runCases(ctx context.Context, st *State) error {
	names, err := store.ExpandAll(ctx, r.src, r.cfg.Inputs.Cases)
	if err != nil {
		return err
	}

	opt := covid.Options{
		Bloc:       r.cfg.BlocSet(),
		WindowDays: r.cfg.Cases.WindowDays,
		Logger:     r.log,
		Metrics:    r.metrics,
	}
	out, stats, err := covid.AggregateFiles(ctx, r.src, names, opt)
	if err != nil {
		return err
	}
	st.Covid, st.CaseStats = out, stats
	r.log.Info(stats.String())

	return r.put(ctx, st, r.cfg.Output.Covid, out.WriteJSON)
}

// }}}
// {{{ publish

func (r *Runner) runPublish(ctx context.Context, st *State) error {
	sink := r.sink
	prefix := r.cfg.Output.BigQueryStaging
	if r.cfg.Publish.Staging != "" {
		s, err := store.NewSink(ctx, r.cfg.Publish.Staging)
		if err != nil {
			return err
		}
		defer s.Close()
		sink, prefix = s, ""
	}

	p, err := publish.NewPublisher(ctx, publish.Config{
		Project:  r.cfg.Publish.Project,
		Dataset:  r.cfg.Publish.Dataset,
		Table:    r.cfg.Publish.Table,
		SkipLoad: r.cfg.Publish.SkipLoad,
	}, sink, r.log)
	if err != nil {
		return err
	}
	defer p.Close()

	for _, g := range []fm.Granularity{fm.RegionLevel, fm.CountryLevel} {
		acc := st.Flights.Regions
		if g == fm.CountryLevel {
			acc = st.Flights.Countries
		}
		name := path.Join(prefix, fmt.Sprintf("pair_weeks_%s.ndjson", g))
		loc, err := p.Publish(ctx, name, publish.Rows(acc, g))
		if err != nil {
			return err
		}
		st.Published = append(st.Published, loc)
		r.metrics.ArtifactWritten(name)
	}
	return nil
}

// }}}

// {{{ Format

// Format lays out an aggregated pair CSV (as written by the flights stage) as
// matrix JSON, without going back to the flight lists.
func Format(ctx context.Context, src store.Source, csvPath string, opt matrix.Options, w io.Writer) (*matrix.Output, error) {
	rc, err := src.Open(ctx, csvPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	acc, err := accum.ReadCSV(csvPath, rc)
	if err != nil {
		return nil, err
	}

	m := matrix.Build(acc, opt)
	if err := m.WriteJSON(w); err != nil {
		return nil, &fm.FileError{Op: "write", Path: "matrix", Err: err}
	}
	return m, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
