// Package geodata places each bloc country at the centroid of its large
// airports, and tabulates the great-circle distances between them.
package geodata

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/skypies/geo"

	fm "github.com/covidflights/flightmatrix"
)

// Airports is satisfied by *ref.AirportTable.
type Airports interface {
	ByCountry(keep func(fm.Airport) bool) map[string][]fm.Airport
}

type Centroid struct {
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	Airports int     `json:"airports"` // how many airports went into the mean
}

func (c Centroid) Latlong() geo.Latlong { return geo.Latlong{Lat: c.Lat, Long: c.Long} }

type Output struct {
	Centroids map[string]Centroid           `json:"centroids"`
	Distances map[string]map[string]float64 `json:"distances"` // km, both directions, no self entries
}

// Build uses only large airports with a known position. Bloc countries
// without any are left out, and reported in missing.
func Build(at Airports, bloc fm.Bloc) (out *Output, missing []string) {
	keep := func(a fm.Airport) bool { return a.IsLarge() && a.HasPosition() }
	byCountry := at.ByCountry(keep)

	out = &Output{
		Centroids: map[string]Centroid{},
		Distances: map[string]map[string]float64{},
	}

	for _, cc := range bloc.Codes() {
		airports := byCountry[cc]
		if len(airports) == 0 {
			missing = append(missing, cc)
			continue
		}
		out.Centroids[cc] = centroid(airports)
	}

	codes := out.Codes()
	for _, a := range codes {
		out.Distances[a] = map[string]float64{}
		for _, b := range codes {
			if a == b {
				continue
			}
			km := out.Centroids[a].Latlong().DistKM(out.Centroids[b].Latlong())
			out.Distances[a][b] = math.Round(km*10) / 10
		}
	}

	return out, missing
}

// Plain mean of positions; the countries are small enough that it doesn't
// matter we're averaging on the sphere.
func centroid(airports []fm.Airport) Centroid {
	var lat, long float64
	for _, a := range airports {
		lat += a.Lat
		long += a.Long
	}
	n := float64(len(airports))
	return Centroid{Lat: lat / n, Long: long / n, Airports: len(airports)}
}

func (o *Output) Codes() []string {
	codes := make([]string, 0, len(o.Centroids))
	for cc := range o.Centroids {
		codes = append(codes, cc)
	}
	sort.Strings(codes)
	return codes
}

// Distance in km between two countries' centroids.
func (o *Output) Distance(a, b string) (float64, error) {
	if a == b {
		if _, ok := o.Centroids[a]; ok {
			return 0, nil
		}
	}
	if d, ok := o.Distances[a][b]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("geodata: no distance %s-%s: %w", a, b, fm.ErrNotFound)
}

func (o *Output) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(o)
}
