// Package publish pushes the weekly pair counts into BigQuery, by staging
// them as newline-delimited JSON in Cloud Storage and submitting a load job.
package publish

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/sirupsen/logrus"

	"github.com/covidflights/flightmatrix/store"
)

// Config names where rows go. The staging sink must be a gs:// location
// unless SkipLoad is set, since BigQuery loads from Cloud Storage.
type Config struct {
	Project  string
	Dataset  string
	Table    string
	SkipLoad bool // stage the file, but don't submit the load job
}

type Publisher struct {
	cfg    Config
	sink   store.Sink
	client *bigquery.Client // nil when SkipLoad
	log    logrus.FieldLogger
	schema bigquery.Schema
}

// NewPublisher opens a BigQuery client for cfg.Project (unless cfg.SkipLoad).
// The caller keeps ownership of sink.
func NewPublisher(ctx context.Context, cfg Config, sink store.Sink, log logrus.FieldLogger) (*Publisher, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	schema, err := bigquery.InferSchema(PairWeekRow{})
	if err != nil {
		return nil, fmt.Errorf("inferring schema: %w", err)
	}

	p := &Publisher{cfg: cfg, sink: sink, log: log, schema: schema}
	if cfg.SkipLoad {
		return p, nil
	}

	if cfg.Project == "" || cfg.Dataset == "" || cfg.Table == "" {
		return nil, fmt.Errorf("publish: project, dataset and table are all required")
	}
	if p.client, err = bigquery.NewClient(ctx, cfg.Project); err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	return p, nil
}

func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// {{{ p.Publish

// Publish stages rows under name and loads them into the table. Returns the
// staged file's location.
func (p *Publisher) Publish(ctx context.Context, name string, rows []PairWeekRow) (string, error) {
	tStart := time.Now()
	log := p.log.WithField("file", name)

	data, err := encodeNDJSON(rows)
	if err != nil {
		return "", err
	}
	if err := p.sink.Put(ctx, name, data, "application/x-ndjson"); err != nil {
		return "", err
	}
	loc := p.sink.Location(name)
	log.WithFields(logrus.Fields{"rows": len(rows), "location": loc}).Info("staged bigquery rows")

	if p.cfg.SkipLoad {
		return loc, nil
	}
	if !store.IsGCS(loc) {
		return loc, fmt.Errorf("publish: can only load from gs://, not '%s'", loc)
	}

	if err := p.load(ctx, loc); err != nil {
		return loc, err
	}

	log.WithField("took", time.Since(tStart).Round(time.Millisecond)).Info("bigquery load done")
	return loc, nil
}

// https://cloud.google.com/bigquery/docs/loading-data-cloud-storage-json
func (p *Publisher) load(ctx context.Context, uri string) error {
	gcsSrc := bigquery.NewGCSReference(uri)
	gcsSrc.SourceFormat = bigquery.JSON
	gcsSrc.Schema = p.schema

	loader := p.client.Dataset(p.cfg.Dataset).Table(p.cfg.Table).LoaderFrom(gcsSrc)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("submission of load job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		detailedErrStr := ""
		for i, innerErr := range status.Errors {
			detailedErrStr += fmt.Sprintf(" [%2d] %v\n", i, innerErr)
		}
		p.log.WithError(err).Errorf("bigquery load job failed\n--\n%s", detailedErrStr)
		return fmt.Errorf("load job %s: %w", job.ID(), err)
	}

	return nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
