package flightmatrix

import (
	"fmt"
	"time"

	"github.com/covidflights/flightmatrix/isoweek"
)

// A Flight is one row of a flight list: where it left from, where it landed,
// and the UTC date. Nothing finer than the day is kept.
type Flight struct {
	Origin      string
	Destination string
	Day         time.Time
}

func (f Flight) String() string {
	return fmt.Sprintf("%s-%s %s", f.Origin, f.Destination, f.Day.Format("2006-01-02"))
}

func (f Flight) Week() isoweek.Week { return isoweek.Of(f.Day) }

func (f Flight) IsSelfLoop() bool { return f.Origin == f.Destination }

// A Pair is a directed edge between two axis codes; A->B and B->A differ.
type Pair struct {
	Origin      string
	Destination string
}

// PairSeparator joins the two codes in the flattened key form ("FR--DE").
const PairSeparator = "--"

func (p Pair) String() string { return p.Origin + PairSeparator + p.Destination }

func (p Pair) Less(o Pair) bool {
	if p.Origin != o.Origin {
		return p.Origin < o.Origin
	}
	return p.Destination < o.Destination
}

// TouchesFallback is true if either end is a continent token.
func (p Pair) TouchesFallback() bool {
	return IsFallbackCode(p.Origin) || IsFallbackCode(p.Destination)
}
