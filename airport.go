package flightmatrix

import (
	"fmt"

	"github.com/skypies/geo"
)

// AirportClass is the OurAirports "type" column. Only the large tier feeds the
// matrices; smaller airports are noise for a country-to-country view.
type AirportClass int

const (
	UnknownClass AirportClass = iota
	LargeAirport
	MediumAirport
	SmallAirport
	Heliport
	SeaplaneBase
	BalloonPort
	ClosedAirport
)

var airportClassNames = map[AirportClass]string{
	UnknownClass:  "unknown",
	LargeAirport:  "large_airport",
	MediumAirport: "medium_airport",
	SmallAirport:  "small_airport",
	Heliport:      "heliport",
	SeaplaneBase:  "seaplane_base",
	BalloonPort:   "balloonport",
	ClosedAirport: "closed",
}

func (c AirportClass) String() string {
	if s, ok := airportClassNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseAirportClass never fails; anything unrecognised is UnknownClass.
func ParseAirportClass(s string) AirportClass {
	for c, name := range airportClassNames {
		if name == s {
			return c
		}
	}
	return UnknownClass
}

// An Airport is one row of the reference table. Region is the ISO 3166-2 code
// (e.g. "FR-IDF"), Country the ISO 3166-1 alpha-2 code, Continent the two
// letter OurAirports continent code (EU, AS, NA, SA, AF, OC, AN).
type Airport struct {
	Ident     string
	Class     AirportClass
	Name      string
	Country   string
	Region    string
	Continent string

	geo.Latlong // zero if the table has no coordinates
}

func (a Airport) String() string {
	return fmt.Sprintf("[%s] %s %s/%s/%s %q", a.Ident, a.Class, a.Continent, a.Country, a.Region, a.Name)
}

func (a Airport) IsLarge() bool { return a.Class == LargeAirport }

// HasPosition is false for rows loaded without latitude/longitude.
func (a Airport) HasPosition() bool { return a.Lat != 0 || a.Long != 0 }
