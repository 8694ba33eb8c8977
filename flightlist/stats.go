package flightlist

import "fmt"

// Outcome is what happened to one flight-list row.
type Outcome int

const (
	Retained       Outcome = iota
	Malformed              // unparseable row, empty endpoint or bad date
	SelfLoop               // origin == destination
	UnknownAirport         // an endpoint missing from the airport table
	ClassFiltered          // an endpoint below the required airport class
)

var outcomeNames = []string{"retained", "malformed", "self_loop", "unknown_airport", "class_filtered"}

func (o Outcome) String() string {
	if int(o) >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

type Stats struct {
	Rows           int
	Retained       int
	Malformed      int
	SelfLoop       int
	UnknownAirport int
	ClassFiltered  int
}

func (s *Stats) Add(o Outcome) {
	s.Rows++
	switch o {
	case Retained:
		s.Retained++
	case Malformed:
		s.Malformed++
	case SelfLoop:
		s.SelfLoop++
	case UnknownAirport:
		s.UnknownAirport++
	case ClassFiltered:
		s.ClassFiltered++
	}
}

func (s *Stats) Merge(o Stats) {
	s.Rows += o.Rows
	s.Retained += o.Retained
	s.Malformed += o.Malformed
	s.SelfLoop += o.SelfLoop
	s.UnknownAirport += o.UnknownAirport
	s.ClassFiltered += o.ClassFiltered
}

// Sub is the difference s - o; used to get one file's share of a running total.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Rows:           s.Rows - o.Rows,
		Retained:       s.Retained - o.Retained,
		Malformed:      s.Malformed - o.Malformed,
		SelfLoop:       s.SelfLoop - o.SelfLoop,
		UnknownAirport: s.UnknownAirport - o.UnknownAirport,
		ClassFiltered:  s.ClassFiltered - o.ClassFiltered,
	}
}

// ByOutcome maps each outcome name to its count.
func (s Stats) ByOutcome() map[string]int {
	return map[string]int{
		Retained.String():       s.Retained,
		Malformed.String():      s.Malformed,
		SelfLoop.String():       s.SelfLoop,
		UnknownAirport.String(): s.UnknownAirport,
		ClassFiltered.String():  s.ClassFiltered,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows, %d retained (malformed %d, self-loop %d, unknown airport %d, class filtered %d)",
		s.Rows, s.Retained, s.Malformed, s.SelfLoop, s.UnknownAirport, s.ClassFiltered)
}
