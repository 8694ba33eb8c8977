package flightmatrix

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covidflights/flightmatrix/isoweek"
)

var (
	lfpg = Airport{Ident: "LFPG", Class: LargeAirport, Country: "FR", Region: "FR-IDF", Continent: "EU"}
	eddf = Airport{Ident: "EDDF", Class: LargeAirport, Country: "DE", Region: "DE-HE", Continent: "EU"}
	lgav = Airport{Ident: "LGAV", Class: LargeAirport, Country: "GR", Region: "GR-I", Continent: "EU"}
	rjtt = Airport{Ident: "RJTT", Class: LargeAirport, Country: "JP", Region: "JP-13", Continent: "AS"}
	egll = Airport{Ident: "EGLL", Class: LargeAirport, Country: "GB", Region: "GB-ENG", Continent: "EU"}
)

func TestClassify(t *testing.T) {
	bloc := NewBloc(DefaultBloc)

	tests := []struct {
		airport Airport
		g       Granularity
		kind    ClassificationKind
		code    string
	}{
		{lfpg, RegionLevel, RegionCode, "FR-IDF"},
		{lfpg, CountryLevel, CountryCode, "FR"},
		{lgav, CountryLevel, CountryCode, "GR"},
		{rjtt, RegionLevel, ContinentFallback, "_AS"},
		{rjtt, CountryLevel, ContinentFallback, "_AS"},
		{egll, CountryLevel, ContinentFallback, "_EU"}, // not in the bloc
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.airport.Ident, tt.g), func(t *testing.T) {
			c := Classify(tt.airport, tt.g, bloc)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.code, c.String())
			assert.Equal(t, tt.kind == ContinentFallback, IsFallbackCode(c.String()))
		})
	}
}

func TestBlocNormalisesCodes(t *testing.T) {
	bloc := NewBloc([]string{"EL", "FR"})
	assert.True(t, bloc.Contains("GR"))
	assert.True(t, bloc.Contains("EL"))
	assert.False(t, bloc.Contains("DE"))
	assert.Equal(t, []string{"FR", "GR"}, bloc.Codes())

	assert.Len(t, NewBloc(DefaultBloc), 31)
	assert.Equal(t, "GR", NormalizeCountryCode("EL"))
	assert.Equal(t, "CH", NormalizeCountryCode("CH"))
}

func TestFallbackSortsAfterISOCodes(t *testing.T) {
	codes := []string{"_AS", "FR", "DE-HE", "_EU", "AT"}
	sort.Strings(codes)
	assert.Equal(t, []string{"AT", "DE-HE", "FR", "_AS", "_EU"}, codes)
}

func TestParseAirportClass(t *testing.T) {
	assert.Equal(t, LargeAirport, ParseAirportClass("large_airport"))
	assert.Equal(t, Heliport, ParseAirportClass("heliport"))
	assert.Equal(t, ClosedAirport, ParseAirportClass("closed"))
	assert.Equal(t, UnknownClass, ParseAirportClass("spaceport"))
	assert.Equal(t, "medium_airport", MediumAirport.String())
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("countries")
	require.NoError(t, err)
	assert.Equal(t, CountryLevel, g)

	_, err = ParseGranularity("planet")
	assert.Error(t, err)
}

func TestFlightAndPair(t *testing.T) {
	f := Flight{Origin: "LFPG", Destination: "EDDF", Day: time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, isoweek.Week{Year: 2020, Week: 2}, f.Week())
	assert.False(t, f.IsSelfLoop())
	assert.Equal(t, "LFPG-EDDF 2020-01-06", f.String())

	p := Pair{"FR", "_AS"}
	assert.Equal(t, "FR--_AS", p.String())
	assert.True(t, p.TouchesFallback())
	assert.False(t, Pair{"FR", "DE"}.TouchesFallback())
	assert.True(t, Pair{"DE", "FR"}.Less(Pair{"FR", "DE"}))
}

func TestErrors(t *testing.T) {
	err := fmt.Errorf("loading: %w", &FileError{Op: "open", Path: "x.csv", Err: fs.ErrNotExist})
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "open x.csv")
	assert.False(t, IsRowError(err))

	rowErr := &RowError{File: "f.csv", Line: 3, Err: ErrMalformedRow}
	assert.True(t, IsRowError(fmt.Errorf("wrapped: %w", rowErr)))
	assert.True(t, errors.Is(rowErr, ErrMalformedRow))
	assert.Equal(t, "f.csv:3: malformed row", rowErr.Error())
}
