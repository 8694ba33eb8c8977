// Package covid rolls daily case and death counts up into ISO weeks, with a
// 7-day incidence per 100k averaged over each week.
package covid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/isoweek"
	"github.com/covidflights/flightmatrix/metrics"
	"github.com/covidflights/flightmatrix/store"
	"github.com/covidflights/flightmatrix/tabular"
)

type Options struct {
	Bloc       fm.Bloc
	WindowDays int
	Logger     logrus.FieldLogger
	Metrics    *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Bloc == nil {
		o.Bloc = fm.NewBloc(fm.DefaultBloc)
	}
	if o.WindowDays <= 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

type Stats struct {
	Rows        int
	Kept        int
	Malformed   int
	OutsideBloc int
}

func (s *Stats) Merge(o Stats) {
	s.Rows += o.Rows
	s.Kept += o.Kept
	s.Malformed += o.Malformed
	s.OutsideBloc += o.OutsideBloc
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows, %d kept (malformed %d, outside bloc %d)", s.Rows, s.Kept, s.Malformed, s.OutsideBloc)
}

// {{{ ReadFrom

// ReadFrom parses one case feed, keeping rows for bloc countries. Bad rows
// are counted and skipped.
func ReadFrom(ctx context.Context, name string, rdr io.Reader, opt Options) ([]Record, Stats, error) {
	opt = opt.withDefaults()
	log := opt.Logger.WithField("file", name)
	stats := Stats{}
	records := []Record{}

	rowReader := tabular.NewRowReader(name, rdr)
	if err := rowReader.HasColumns(requiredColumns...); err != nil {
		return nil, stats, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		row, err := rowReader.Read()
		if err == io.EOF {
			break
		}
		stats.Rows++
		if fm.IsRowError(err) {
			log.WithError(err).Debug("skipping row")
			stats.Malformed++
			continue
		} else if err != nil {
			return nil, stats, &fm.FileError{Op: "read", Path: name, Err: err}
		}

		r, err := ParseRecord(row)
		if err != nil {
			log.WithField("line", rowReader.Line()).WithError(err).Debug("skipping row")
			stats.Malformed++
			continue
		}
		if !opt.Bloc.Contains(r.Country) {
			stats.OutsideBloc++
			continue
		}

		stats.Kept++
		records = append(records, r)
	}

	opt.Metrics.CaseOutcome("kept", stats.Kept)
	opt.Metrics.CaseOutcome("malformed", stats.Malformed)
	opt.Metrics.CaseOutcome("outside_bloc", stats.OutsideBloc)

	log.WithFields(logrus.Fields{"rows": stats.Rows, "kept": stats.Kept, "malformed": stats.Malformed}).Info("case feed read")
	return records, stats, nil
}

// }}}
// {{{ Aggregate

type WeekStats struct {
	Cases     int     `json:"cases"`
	Deaths    int     `json:"deaths"`
	Incidence float64 `json:"incidence"`
}

// Output is keyed by ISO week, then country code.
type Output struct {
	YearWeek  map[string]map[string]WeekStats `json:"yearWeek"`
	Countries map[string]int64                `json:"countries"`
}

// Aggregate buckets records (with incidence already computed) into ISO weeks.
// Cases and deaths are summed; the week's incidence is the mean of its daily
// incidences, rounded to two places, or 0 if none of its days had one.
func Aggregate(records []Record) *Output {
	type bucket struct {
		WeekStats
		sum float64
		n   int
	}

	buckets := map[string]map[string]*bucket{}
	out := &Output{
		YearWeek:  map[string]map[string]WeekStats{},
		Countries: map[string]int64{},
	}

	for _, r := range records {
		if pop, seen := out.Countries[r.Country]; !seen || pop == 0 {
			out.Countries[r.Country] = r.Population
		}

		week := isoweek.Of(r.Day).String()
		if buckets[week] == nil {
			buckets[week] = map[string]*bucket{}
		}
		b := buckets[week][r.Country]
		if b == nil {
			b = &bucket{}
			buckets[week][r.Country] = b
		}

		b.Cases += r.Cases
		b.Deaths += r.Deaths
		if r.HasIncidence {
			b.sum += r.Incidence
			b.n++
		}
	}

	for week, byCountry := range buckets {
		out.YearWeek[week] = map[string]WeekStats{}
		for cc, b := range byCountry {
			ws := b.WeekStats
			if b.n > 0 {
				ws.Incidence = round2(b.sum / float64(b.n))
			}
			out.YearWeek[week][cc] = ws
		}
	}

	return out
}

// Weeks returns the week keys, in order.
func (o *Output) Weeks() []string {
	keys := make([]string, 0, len(o.YearWeek))
	for k := range o.YearWeek {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *Output) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}

func ReadJSON(r io.Reader) (*Output, error) {
	o := Output{}
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("decoding case output: %w", err)
	}
	return &o, nil
}

// }}}
// {{{ AggregateFiles

// AggregateFiles concatenates every feed (no dedupe across feeds), computes
// incidence over the lot and buckets it. A missing or unreadable feed is fatal.
func AggregateFiles(ctx context.Context, src store.Source, names []string, opt Options) (*Output, Stats, error) {
	opt = opt.withDefaults()
	all := []Record{}
	total := Stats{}

	for _, name := range names {
		rc, err := src.Open(ctx, name)
		if err != nil {
			return nil, total, err
		}
		records, stats, err := ReadFrom(ctx, name, rc, opt)
		rc.Close()
		if err != nil {
			return nil, total, fmt.Errorf("covid.ReadFrom '%s': %w", name, err)
		}
		all = append(all, records...)
		total.Merge(stats)
	}

	ComputeIncidence(all, opt.WindowDays)
	out := Aggregate(all)

	opt.Logger.WithFields(logrus.Fields{
		"feeds":     len(names),
		"weeks":     len(out.YearWeek),
		"countries": len(out.Countries),
	}).Info("case data aggregated")

	return out, total, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
