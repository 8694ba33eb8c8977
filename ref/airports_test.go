package ref

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/store"
)

const airportsCSV = `# OurAirports extract
id,ident,type,name,latitude_deg,longitude_deg,elevation_ft,continent,iso_country,iso_region
1,LFPG,large_airport,Charles de Gaulle International Airport,49.012798,2.55,392,EU,FR,FR-IDF
2,EDDF,large_airport,Frankfurt am Main Airport,50.033333,8.570556,364,EU,DE,DE-HE
3,LFPB,medium_airport,Paris-Le Bourget Airport,48.969398,2.44139,218,EU,FR,FR-IDF
4,RJTT,large_airport,Tokyo Haneda International Airport,35.552299,139.779999,35,AS,JP,JP-13
5,00A,heliport,Total Rf Heliport,,,11,NA,US,US-PA
`

func TestReadAirports(t *testing.T) {
	at, err := ReadAirports("airports.csv", strings.NewReader(airportsCSV))
	require.NoError(t, err)
	assert.Equal(t, 5, at.Len())

	a, ok := at.Lookup("LFPG")
	require.True(t, ok)
	assert.Equal(t, fm.LargeAirport, a.Class)
	assert.Equal(t, "FR", a.Country)
	assert.Equal(t, "FR-IDF", a.Region)
	assert.Equal(t, "EU", a.Continent)
	assert.InDelta(t, 49.0128, a.Lat, 1e-4)
	assert.True(t, a.HasPosition())

	heli, ok := at.Lookup("00A")
	require.True(t, ok)
	assert.Equal(t, fm.Heliport, heli.Class)
	assert.Equal(t, "NA", heli.Continent)
	assert.False(t, heli.HasPosition())

	_, ok = at.Lookup("ZZZZ")
	assert.False(t, ok, "unknown idents are an absent signal, not an error")

	assert.Equal(t, []string{"00A", "EDDF", "LFPB", "LFPG", "RJTT"}, at.Idents())
	assert.Contains(t, at.String(), "5 entries, 3 large")
}

func TestReadAirportsMissingColumn(t *testing.T) {
	_, err := ReadAirports("airports.csv", strings.NewReader("ident,type,iso_country\nLFPG,large_airport,FR\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fm.ErrMissingColumn)
	assert.Contains(t, err.Error(), "iso_region")
}

func TestReadAirportsBadRow(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short row", "ident,type,iso_country,iso_region,continent\nLFPG,large_airport,FR\n"},
		{"empty ident", "ident,type,iso_country,iso_region,continent\n,large_airport,FR,FR-IDF,EU\n"},
		{"bad position", "ident,type,iso_country,iso_region,continent,latitude_deg,longitude_deg\nLFPG,large_airport,FR,FR-IDF,EU,north,2.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAirports("airports.csv", strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, fm.IsRowError(err))
			assert.ErrorIs(t, err, fm.ErrMalformedRow)
			assert.Contains(t, err.Error(), "airports.csv:2")
		})
	}
}

func TestByCountry(t *testing.T) {
	at, err := ReadAirports("airports.csv", strings.NewReader(airportsCSV))
	require.NoError(t, err)

	large := at.ByCountry(fm.Airport.IsLarge)
	require.Len(t, large["FR"], 1)
	assert.Equal(t, "LFPG", large["FR"][0].Ident)
	assert.NotContains(t, large, "US")

	all := at.ByCountry(nil)
	assert.Len(t, all["FR"], 2)
}

func TestLoadAirports(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "airports.csv")
	require.NoError(t, os.WriteFile(p, []byte(airportsCSV), 0o644))

	at, err := LoadAirports(context.Background(), store.NewOpener(), p)
	require.NoError(t, err)
	assert.Equal(t, 5, at.Len())

	_, err = LoadAirports(context.Background(), store.NewOpener(), filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fm.ErrNotFound)
}
