package flightlist

import (
	"fmt"
	"time"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/tabular"
)

// {{{ notes

/* OpenSky's COVID-19 flight lists, one file per month:

  callsign,number,icao24,registration,typecode,origin,destination,firstseen,
    lastseen,day,latitude_1,longitude_1,altitude_1,latitude_2,longitude_2,altitude_2

E.g.:

  DLH123,LH123,3c6444,D-AIBA,A319,EDDF,LFPG,2020-01-06 07:04:11+00:00,
    2020-01-06 08:05:36+00:00,2020-01-06 00:00:00+00:00,50.03,8.54,...

origin/destination are ICAO idents matching airports.csv, and are empty when
OpenSky couldn't work them out. day is midnight UTC of the flight date.
*/

// }}}

const (
	ColOrigin      = "origin"
	ColDestination = "destination"
	ColDay         = "day"
)

// ParseFlight pulls the three fields we use out of a flight-list row. The day
// may carry a time suffix; only the leading date counts.
func ParseFlight(row tabular.Row) (fm.Flight, error) {
	vals, err := row.Require(ColOrigin, ColDestination, ColDay)
	if err != nil {
		return fm.Flight{}, err
	}

	day, err := ParseDay(vals[2])
	if err != nil {
		return fm.Flight{}, err
	}

	return fm.Flight{Origin: vals[0], Destination: vals[1], Day: day}, nil
}

func ParseDay(s string) (time.Time, error) {
	if len(s) < 10 {
		return time.Time{}, fmt.Errorf("%w: bad day %q", fm.ErrMalformedRow, s)
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad day %q", fm.ErrMalformedRow, s)
	}
	return t, nil
}
