// Package matrix flattens a pair accumulator into the dense per-week
// origin x destination matrices that the chord diagram reads.
package matrix

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/isoweek"
)

type Options struct {
	// ExcludeExternal leaves every cell with a continent fallback at either end
	// as 0. The codes stay on the axis either way.
	ExcludeExternal bool
}

// Output is the serialized artifact. Rows are origins, columns destinations,
// both indexed by Countries.
type Output struct {
	YearMonth         map[string][][]int `json:"yearMonth"`
	Countries         []string           `json:"countries"`
	TotalNumOfFlights map[string]int     `json:"totalNumOfFlights"`
}

func newSquare(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// Build lays out one matrix per week the accumulator has seen.
func Build(acc *accum.Accumulator, opt Options) *Output {
	axis := acc.Codes()
	index := make(map[string]int, len(axis))
	for i, c := range axis {
		index[c] = i
	}

	out := &Output{
		YearMonth:         map[string][][]int{},
		Countries:         axis,
		TotalNumOfFlights: map[string]int{},
	}
	for _, w := range acc.Weeks() {
		out.YearMonth[w.String()] = newSquare(len(axis))
		out.TotalNumOfFlights[w.String()] = 0
	}

	acc.Each(func(p fm.Pair, w isoweek.Week, n int) {
		if opt.ExcludeExternal && p.TouchesFallback() {
			return
		}
		key := w.String()
		out.YearMonth[key][index[p.Origin]][index[p.Destination]] += n
		out.TotalNumOfFlights[key] += n
	})

	return out
}

// Weeks returns the week keys, in order.
func (o *Output) Weeks() []string {
	keys := make([]string, 0, len(o.YearMonth))
	for k := range o.YearMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Cell looks up one count by codes; 0 for anything off the axis.
func (o *Output) Cell(week, origin, destination string) int {
	m, ok := o.YearMonth[week]
	if !ok {
		return 0
	}
	i, j := sort.SearchStrings(o.Countries, origin), sort.SearchStrings(o.Countries, destination)
	if i >= len(o.Countries) || o.Countries[i] != origin || j >= len(o.Countries) || o.Countries[j] != destination {
		return 0
	}
	return m[i][j]
}

// Check verifies the shape, and that each week's total is the sum of its cells.
func (o *Output) Check() error {
	n := len(o.Countries)
	if !sort.StringsAreSorted(o.Countries) {
		return fmt.Errorf("axis is not sorted")
	}
	for week, m := range o.YearMonth {
		if _, err := isoweek.Parse(week); err != nil {
			return err
		}
		if len(m) != n {
			return fmt.Errorf("week %s: %d rows, want %d", week, len(m), n)
		}
		sum := 0
		for i, row := range m {
			if len(row) != n {
				return fmt.Errorf("week %s row %d: %d columns, want %d", week, i, len(row), n)
			}
			for _, v := range row {
				sum += v
			}
		}
		if total, ok := o.TotalNumOfFlights[week]; !ok || total != sum {
			return fmt.Errorf("week %s: total %d, cells sum to %d", week, total, sum)
		}
	}
	if len(o.TotalNumOfFlights) != len(o.YearMonth) {
		return fmt.Errorf("%d totals for %d weeks", len(o.TotalNumOfFlights), len(o.YearMonth))
	}
	return nil
}

// WriteJSON is byte-for-byte stable for a given accumulator; map keys come
// out sorted.
func (o *Output) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(o)
}

func ReadJSON(r io.Reader) (*Output, error) {
	o := Output{}
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("decoding matrix: %w", err)
	}
	return &o, nil
}
