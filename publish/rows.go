package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/isoweek"
)

// PairWeekRow is one accumulator cell, denormalized for import into BigQuery,
// so that a week's traffic can be sliced without the matrix files.
type PairWeekRow struct {
	Granularity string    `json:"granularity" bigquery:"granularity"`
	Origin      string    `json:"origin" bigquery:"origin"`
	Destination string    `json:"destination" bigquery:"destination"`
	Week        string    `json:"week" bigquery:"week"` // e.g. 2020-02
	WeekStart   time.Time `json:"week_start" bigquery:"week_start"`
	External    bool      `json:"external" bigquery:"external"` // an end is a continent fallback
	Flights     int64     `json:"flights" bigquery:"flights"`
}

func (r PairWeekRow) String() string {
	return fmt.Sprintf("%s %s %s %d", r.Granularity, fm.Pair{Origin: r.Origin, Destination: r.Destination}, r.Week, r.Flights)
}

// Rows flattens an accumulator, in (pair, week) order.
func Rows(acc *accum.Accumulator, g fm.Granularity) []PairWeekRow {
	rows := make([]PairWeekRow, 0, acc.Len())
	acc.Each(func(p fm.Pair, w isoweek.Week, n int) {
		rows = append(rows, PairWeekRow{
			Granularity: g.String(),
			Origin:      p.Origin,
			Destination: p.Destination,
			Week:        w.String(),
			WeekStart:   w.Start(),
			External:    p.TouchesFallback(),
			Flights:     int64(n),
		})
	})
	return rows
}

// WriteNDJSON writes one JSON object per line, which is what BigQuery's JSON
// load format wants.
func WriteNDJSON(w io.Writer, rows []PairWeekRow) error {
	encoder := json.NewEncoder(w)
	for _, r := range rows {
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func encodeNDJSON(rows []PairWeekRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
