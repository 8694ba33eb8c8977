package accum

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/isoweek"
	"github.com/covidflights/flightmatrix/tabular"
)

/* The aggregated CSV sits between the flight pass and the matrix pass:

  origin,destination,2020-01,2020-02,...
  DE,FR,12,15,...

One row per pair, one column per week seen anywhere, zero filled. The
matrix step can be rerun from it without touching the raw flight lists.
*/

const (
	colOrigin      = "origin"
	colDestination = "destination"
)

func (a *Accumulator) WriteCSV(w io.Writer) error {
	weeks := a.Weeks()
	cw := csv.NewWriter(w)

	header := []string{colOrigin, colDestination}
	for _, wk := range weeks {
		header = append(header, wk.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range a.Pairs() {
		rec := []string{p.Origin, p.Destination}
		for _, wk := range weeks {
			rec = append(rec, strconv.Itoa(a.cells[p][wk]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV restores an accumulator written by WriteCSV. This is our own
// artifact, so a bad row is an error rather than a skip. Zero cells are not
// stored.
func ReadCSV(name string, r io.Reader) (*Accumulator, error) {
	rdr := tabular.NewRowReader(name, r)
	if err := rdr.HasColumns(colOrigin, colDestination); err != nil {
		return nil, err
	}

	weeks := map[string]isoweek.Week{}
	for _, h := range rdr.Headers() {
		if h == colOrigin || h == colDestination {
			continue
		}
		wk, err := isoweek.Parse(h)
		if err != nil {
			return nil, fmt.Errorf("%s: header: %w", name, err)
		}
		weeks[h] = wk
	}

	a := New()
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		p := fm.Pair{Origin: row.Get(colOrigin), Destination: row.Get(colDestination)}
		if p.Origin == "" || p.Destination == "" {
			return nil, &fm.RowError{File: name, Line: rdr.Line(), Err: fmt.Errorf("%w: empty code", fm.ErrMalformedRow)}
		}
		for h, wk := range weeks {
			n, err := strconv.Atoi(row.Get(h))
			if err != nil || n < 0 {
				return nil, &fm.RowError{File: name, Line: rdr.Line(),
					Err: fmt.Errorf("%w: count %q for %s", fm.ErrMalformedRow, row.Get(h), h)}
			}
			if n > 0 {
				a.AddN(p, wk, n)
			}
		}
	}
	return a, nil
}
