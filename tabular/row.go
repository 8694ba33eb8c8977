// Package tabular reads the comma separated inputs of the pipeline: a header
// row, then data rows, with '#' comment lines skipped.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	fm "github.com/covidflights/flightmatrix"
)

// {{{ notes

/* The inputs (OurAirports, OpenSky flight lists, ECDC case feeds) carry more
columns than we need, and their column order drifts between dumps; so each
row is turned into a map from header name to value, like this:

  airports.csv:   id,ident,type,name,latitude_deg,longitude_deg,elevation_ft,
                  continent,iso_country,iso_region,municipality,...
  flightlist_*:   callsign,number,icao24,registration,typecode,origin,
                  destination,firstseen,lastseen,day,...
  data.csv:       dateRep,day,month,year,cases,deaths,countriesAndTerritories,
                  geoId,countryterritoryCode,popData2020,continentExp

*/

// }}}

type RowReader struct {
	name      string
	br        *bufio.Reader
	headers   []string
	headerErr error
	line      int
}

// NewRowReader consumes the header row straight away. A failure to read it is
// held back and returned by the first call to Read.
func NewRowReader(name string, ioreader io.Reader) *RowReader {
	rdr := RowReader{name: name, br: bufio.NewReaderSize(ioreader, 1<<16)}

	text, err := rdr.nextLine()
	if err != nil {
		rdr.headerErr = err
		return &rdr
	}
	if rdr.headers, err = splitLine(text); err != nil {
		rdr.headerErr = fmt.Errorf("header line %d: %w", rdr.line, err)
		return &rdr
	}
	for i := range rdr.headers {
		rdr.headers[i] = strings.TrimSpace(strings.TrimPrefix(rdr.headers[i], "\ufeff"))
	}
	return &rdr
}

func (r *RowReader) Name() string      { return r.name }
func (r *RowReader) Headers() []string { return r.headers }

// Line is the input line of the row most recently returned.
func (r *RowReader) Line() int { return r.line }

// HasColumns returns ErrMissingColumn naming each absent header.
func (r *RowReader) HasColumns(cols ...string) error {
	if r.headerErr != nil {
		if r.headerErr == io.EOF {
			return fmt.Errorf("%s: empty table: %w", r.name, fm.ErrMissingColumn)
		}
		return &fm.FileError{Op: "read", Path: r.name, Err: r.headerErr}
	}
	missing := []string{}
	for _, c := range cols {
		if r.index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", r.name, fm.ErrMissingColumn, strings.Join(missing, ","))
	}
	return nil
}

func (r *RowReader) index(col string) int {
	for i, h := range r.headers {
		if h == col {
			return i
		}
	}
	return -1
}

// {{{ r.nextLine

// nextLine returns the next physical line that is neither blank nor a
// comment, without its line ending.
func (r *RowReader) nextLine() (string, error) {
	for {
		text, err := r.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if text == "" && err == io.EOF {
			return "", io.EOF
		}
		r.line++

		text = strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(text) != "" && !strings.HasPrefix(text, "#") {
			return text, nil
		}
		if err == io.EOF {
			return "", io.EOF
		}
	}
}

// splitLine parses a single line as CSV. Quoted fields can't span lines, so
// an unbalanced quote spoils just the one row.
func splitLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	vals, err := cr.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, perr.Err
		}
		return nil, err
	}
	return vals, nil
}

// }}}
// {{{ r.Read()

// Read returns the next row. Per-row problems (field count mismatch, bad
// quoting) come back as *flightmatrix.RowError, and the reader can keep
// going; anything else (including io.EOF) ends the stream.
func (r *RowReader) Read() (Row, error) {
	if r.headerErr != nil {
		return nil, r.headerErr
	}

	text, err := r.nextLine()
	if err != nil {
		return nil, err
	}

	vals, err := splitLine(text)
	if err != nil {
		return nil, &fm.RowError{File: r.name, Line: r.line, Err: fmt.Errorf("%w: %v", fm.ErrMalformedRow, err)}
	}

	if len(r.headers) != len(vals) {
		return nil, &fm.RowError{File: r.name, Line: r.line,
			Err: fmt.Errorf("%w: header/val mismatch (%d/%d)", fm.ErrMalformedRow, len(r.headers), len(vals))}
	}

	m := make(Row, len(vals))
	for i := range vals {
		m[r.headers[i]] = strings.TrimSpace(vals[i])
	}
	return m, nil
}

// }}}

type Row map[string]string

func (r Row) Get(col string) string { return r[col] }

// Require returns the values of cols in order, failing if any is empty.
func (r Row) Require(cols ...string) ([]string, error) {
	vals := make([]string, len(cols))
	for i, c := range cols {
		v, ok := r[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", fm.ErrMissingColumn, c)
		}
		if v == "" {
			return nil, fmt.Errorf("%w: empty %s", fm.ErrMalformedRow, c)
		}
		vals[i] = v
	}
	return vals, nil
}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
