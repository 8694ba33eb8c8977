// Package ref contains reference lookups: the airport table that the flight
// aggregation classifies every flight against.
package ref

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/skypies/geo"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/store"
	"github.com/covidflights/flightmatrix/tabular"
)

// Columns of the OurAirports airports.csv that we rely on.
const (
	ColIdent     = "ident"
	ColType      = "type"
	ColName      = "name"
	ColCountry   = "iso_country"
	ColRegion    = "iso_region"
	ColContinent = "continent"
	ColLat       = "latitude_deg"
	ColLong      = "longitude_deg"
)

var requiredColumns = []string{ColIdent, ColType, ColCountry, ColRegion, ColContinent}

// AirportTable maps airport ident (ICAO code, or a local code for tiny
// fields) to the static data about it. Built once per run, then read only.
type AirportTable struct {
	Map map[string]fm.Airport
}

func BlankAirportTable() AirportTable {
	return AirportTable{Map: map[string]fm.Airport{}}
}

// Lookup is the only accessor the aggregators use; ok is false for idents we
// have never heard of, which callers treat as a filter, not a failure.
func (at *AirportTable) Lookup(ident string) (fm.Airport, bool) {
	a, ok := at.Map[ident]
	return a, ok
}

func (at *AirportTable) Set(a fm.Airport) { at.Map[a.Ident] = a }
func (at *AirportTable) Len() int         { return len(at.Map) }

func (at AirportTable) String() string {
	counts := map[fm.AirportClass]int{}
	for _, a := range at.Map {
		counts[a.Class]++
	}
	return fmt.Sprintf("--- airport table (%d entries, %d large) ---", len(at.Map), counts[fm.LargeAirport])
}

// Idents returns every ident, sorted.
func (at *AirportTable) Idents() []string {
	ids := make([]string, 0, len(at.Map))
	for id := range at.Map {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByCountry groups the airports that pass keep (nil keeps all) by country,
// each list sorted by ident.
func (at *AirportTable) ByCountry(keep func(fm.Airport) bool) map[string][]fm.Airport {
	out := map[string][]fm.Airport{}
	for _, id := range at.Idents() {
		a := at.Map[id]
		if keep != nil && !keep(a) {
			continue
		}
		c := fm.NormalizeCountryCode(a.Country)
		out[c] = append(out[c], a)
	}
	return out
}

// {{{ ReadAirports

// ReadAirports parses an airports table. Unlike the flight lists, this table
// is small and authoritative, so any bad row fails the whole load.
func ReadAirports(name string, rdr io.Reader) (*AirportTable, error) {
	rowReader := tabular.NewRowReader(name, rdr)
	if err := rowReader.HasColumns(requiredColumns...); err != nil {
		return nil, err
	}

	at := BlankAirportTable()
	for {
		row, err := rowReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		a, err := rowToAirport(row)
		if err != nil {
			return nil, &fm.RowError{File: name, Line: rowReader.Line(), Err: err}
		}
		at.Set(a)
	}

	return &at, nil
}

func rowToAirport(row tabular.Row) (fm.Airport, error) {
	vals, err := row.Require(requiredColumns...)
	if err != nil {
		return fm.Airport{}, err
	}

	a := fm.Airport{
		Ident:     vals[0],
		Class:     fm.ParseAirportClass(vals[1]),
		Country:   vals[2],
		Region:    vals[3],
		Continent: vals[4],
		Name:      row.Get(ColName),
	}

	latStr, longStr := row.Get(ColLat), row.Get(ColLong)
	if latStr != "" && longStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		long, err2 := strconv.ParseFloat(longStr, 64)
		if err1 != nil || err2 != nil {
			return fm.Airport{}, fmt.Errorf("%w: bad position %q,%q", fm.ErrMalformedRow, latStr, longStr)
		}
		a.Latlong = geo.Latlong{Lat: lat, Long: long}
	}

	return a, nil
}

// }}}
// {{{ LoadAirports

func LoadAirports(ctx context.Context, src store.Source, path string) (*AirportTable, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	at, err := ReadAirports(path, rc)
	if err != nil {
		return nil, fmt.Errorf("loading airports: %w", err)
	}
	return at, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
