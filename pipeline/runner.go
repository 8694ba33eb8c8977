package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/covidflights/flightmatrix/config"
	"github.com/covidflights/flightmatrix/covid"
	"github.com/covidflights/flightmatrix/flightlist"
	"github.com/covidflights/flightmatrix/geodata"
	"github.com/covidflights/flightmatrix/metrics"
	"github.com/covidflights/flightmatrix/ref"
	"github.com/covidflights/flightmatrix/store"
)

// State is what one run has built so far. Each run starts with an empty one.
type State struct {
	Airports      *ref.AirportTable
	Flights       *flightlist.Aggregator
	FlightSummary flightlist.Summary
	Covid         *covid.Output
	CaseStats     covid.Stats
	Geo           *geodata.Output
	Published     []string // staged BigQuery files
	Written       []string // artifacts, as sink locations
}

type Runner struct {
	cfg     *config.Config
	src     store.Source
	sink    store.Sink
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	graph   *Graph
}

// NewRunner wires the standard stages. m may be nil.
func NewRunner(cfg *config.Config, src store.Source, sink store.Sink, m *metrics.Metrics, log logrus.FieldLogger) (*Runner, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	r := &Runner{cfg: cfg, src: src, sink: sink, metrics: m, log: log}

	g, err := NewGraph([]Stage{
		{Name: StageAirports, Run: r.runAirports},
		{Name: StageFlights, Needs: []string{StageAirports}, Run: r.runFlights},
		{Name: StageMatrices, Needs: []string{StageFlights}, Run: r.runMatrices},
		{Name: StageDistances, Needs: []string{StageAirports}, Run: r.runDistances},
		{Name: StageCases, Run: r.runCases},
		{Name: StagePublish, Needs: []string{StageFlights}, Run: r.runPublish},
	})
	if err != nil {
		return nil, err
	}
	r.graph = g

	return r, nil
}

func (r *Runner) Graph() *Graph { return r.graph }

// DefaultTargets is every stage except publish, which needs cloud credentials.
func (r *Runner) DefaultTargets() []string {
	var out []string
	for _, s := range r.graph.Stages() {
		if s != StagePublish {
			out = append(out, s)
		}
	}
	return out
}

// {{{ r.Run

// Run plans the targets (DefaultTargets if none) and runs the stages in turn,
// stopping at the first failure.
func (r *Runner) Run(ctx context.Context, targets ...string) (*State, error) {
	if len(targets) == 0 {
		targets = r.DefaultTargets()
	}
	plan, err := r.graph.Plan(targets)
	if err != nil {
		return nil, err
	}

	r.log.WithField("plan", plan).Info("starting run")
	tRun := time.Now()
	st := &State{}

	runErr := func() error {
		for i, name := range plan {
			if err := ctx.Err(); err != nil {
				return err
			}

			stage, _ := r.graph.Stage(name)
			log := r.log.WithField("stage", name)
			log.Infof("[%d/%d] running", i+1, len(plan))

			tStart := time.Now()
			err := stage.Run(ctx, st)
			r.metrics.ObserveStage(name, time.Since(tStart), err)
			if err != nil {
				return fmt.Errorf("stage %s: %w", name, err)
			}

			log.WithField("took", time.Since(tStart).Round(time.Millisecond)).Info("stage done")
		}
		return nil
	}()

	if runErr == nil {
		r.metrics.MarkSuccess(time.Now())
		r.log.WithFields(logrus.Fields{
			"took":      time.Since(tRun).Round(time.Millisecond),
			"artifacts": len(st.Written),
		}).Info("run complete")
	}

	if err := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
		r.log.WithError(err).Warn("could not write metrics textfile")
	}

	return st, runErr
}

// }}}
// {{{ r.put

// put renders an artifact into memory, then hands it to the sink whole, so a
// failed render never leaves half a file behind.
func (r *Runner) put(ctx context.Context, st *State, name string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	if err := r.sink.Put(ctx, name, buf.Bytes(), store.ContentType(name)); err != nil {
		return err
	}

	loc := r.sink.Location(name)
	st.Written = append(st.Written, loc)
	r.metrics.ArtifactWritten(name)
	r.log.WithFields(logrus.Fields{"location": loc, "bytes": buf.Len()}).Info("wrote artifact")
	return nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
