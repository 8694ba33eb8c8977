package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/isoweek"
	"github.com/covidflights/flightmatrix/store"
)

func sample() *accum.Accumulator {
	a := accum.New()
	a.AddN(fm.Pair{Origin: "FR", Destination: "DE"}, isoweek.Week{Year: 2020, Week: 2}, 3)
	a.AddN(fm.Pair{Origin: "FR", Destination: "_AS"}, isoweek.Week{Year: 2020, Week: 2}, 1)
	a.AddN(fm.Pair{Origin: "DE", Destination: "FR"}, isoweek.Week{Year: 2020, Week: 53}, 2)
	return a
}

func TestRows(t *testing.T) {
	rows := Rows(sample(), fm.CountryLevel)
	require.Len(t, rows, 3)

	assert.Equal(t, PairWeekRow{
		Granularity: "country",
		Origin:      "DE",
		Destination: "FR",
		Week:        "2020-53",
		WeekStart:   time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC),
		Flights:     2,
	}, rows[0])
	assert.Equal(t, "FR", rows[1].Origin)
	assert.False(t, rows[1].External)
	assert.True(t, rows[2].External)
	assert.Equal(t, "country FR--_AS 2020-02 1", rows[2].String())
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, Rows(sample(), fm.RegionLevel)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"granularity":"region","origin":"DE","destination":"FR","week":"2020-53","week_start":"2020-12-28T00:00:00Z","external":false,"flights":2}`, lines[0])

	for _, l := range lines {
		var r PairWeekRow
		require.NoError(t, json.Unmarshal([]byte(l), &r))
	}
}

func TestPublishSkipLoad(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPublisher(context.Background(), Config{SkipLoad: true}, store.NewLocalSink(dir), nil)
	require.NoError(t, err)
	defer p.Close()

	loc, err := p.Publish(context.Background(), "bigquery/flights_countries.ndjson", Rows(sample(), fm.CountryLevel))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bigquery", "flights_countries.ndjson"), loc)

	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(b), "\n"))
}

func TestNewPublisherNeedsTable(t *testing.T) {
	_, err := NewPublisher(context.Background(), Config{Project: "covidflights"}, store.NewLocalSink(t.TempDir()), nil)
	assert.Error(t, err)
}
