package covid

import (
	"fmt"
	"strconv"
	"time"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/tabular"
)

// {{{ notes

/* ECDC daily case data, and a second feed of the same shape for Switzerland
   and Liechtenstein:

  dateRep,day,month,year,cases,deaths,countriesAndTerritories,geoId,
    countryterritoryCode,popData2020,continentExp

  14/12/2020,14,12,2020,2103,53,Austria,AT,AUT,8901064,Europe

geoId is ISO 3166 alpha-2 except for Greece, which ECDC calls EL. cases can
go negative when a country revises its counts downward.
*/

// }}}

const (
	ColCountry    = "geoId"
	ColYear       = "year"
	ColMonth      = "month"
	ColDay        = "day"
	ColCases      = "cases"
	ColDeaths     = "deaths"
	ColPopulation = "popData2020"
)

var requiredColumns = []string{ColCountry, ColYear, ColMonth, ColDay, ColCases, ColDeaths}

// Record is one country-day. Population is 0 when the feed doesn't know it.
type Record struct {
	Country    string
	Day        time.Time
	Cases      int
	Deaths     int
	Population int64

	Incidence    float64 // cases per 100k over the trailing window
	HasIncidence bool
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s cases=%d deaths=%d", r.Country, r.Day.Format("2006-01-02"), r.Cases, r.Deaths)
}

func atoi(col, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", fm.ErrMalformedRow, col, s)
	}
	return n, nil
}

// ParseRecord reads one row, with the country code normalized.
func ParseRecord(row tabular.Row) (Record, error) {
	vals, err := row.Require(requiredColumns...)
	if err != nil {
		return Record{}, err
	}

	var ints [5]int
	for i, col := range requiredColumns[1:] {
		if ints[i], err = atoi(col, vals[i+1]); err != nil {
			return Record{}, err
		}
	}
	year, month, day := ints[0], ints[1], ints[2]

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Record{}, fmt.Errorf("%w: no such date %d-%d-%d", fm.ErrMalformedRow, year, month, day)
	}

	r := Record{
		Country: fm.NormalizeCountryCode(vals[0]),
		Day:     t,
		Cases:   ints[3],
		Deaths:  ints[4],
	}

	if s := row.Get(ColPopulation); s != "" {
		pop, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: bad %s %q", fm.ErrMalformedRow, ColPopulation, s)
		}
		r.Population = pop
	}

	return r, nil
}
