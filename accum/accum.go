// Package accum holds the running flight counts: per directed pair of axis
// codes, per ISO week. Counts only ever go up during a run.
package accum

import (
	"fmt"
	"sort"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/isoweek"
)

type Accumulator struct {
	cells map[fm.Pair]map[isoweek.Week]int
}

func New() *Accumulator {
	return &Accumulator{cells: map[fm.Pair]map[isoweek.Week]int{}}
}

func (a *Accumulator) Add(p fm.Pair, w isoweek.Week) { a.AddN(p, w, 1) }

// AddN adds n flights. Negative n would break the monotonic guarantee, so it
// is refused.
func (a *Accumulator) AddN(p fm.Pair, w isoweek.Week, n int) {
	if n < 0 {
		panic(fmt.Sprintf("accum: negative count %d for %s %s", n, p, w))
	}
	weeks, ok := a.cells[p]
	if !ok {
		weeks = map[isoweek.Week]int{}
		a.cells[p] = weeks
	}
	weeks[w] += n
}

// Merge folds other into a, summing counts that land on the same cell.
func (a *Accumulator) Merge(other *Accumulator) {
	for p, weeks := range other.cells {
		for w, n := range weeks {
			a.AddN(p, w, n)
		}
	}
}

func (a *Accumulator) Count(p fm.Pair, w isoweek.Week) int { return a.cells[p][w] }

// Len is the number of distinct pairs seen.
func (a *Accumulator) Len() int { return len(a.cells) }

func (a *Accumulator) Total() int {
	n := 0
	for _, weeks := range a.cells {
		for _, c := range weeks {
			n += c
		}
	}
	return n
}

// Pairs are sorted by origin, then destination.
func (a *Accumulator) Pairs() []fm.Pair {
	pairs := make([]fm.Pair, 0, len(a.cells))
	for p := range a.cells {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
	return pairs
}

// Weeks lists every week with at least one cell, in calendar order.
func (a *Accumulator) Weeks() []isoweek.Week {
	seen := map[isoweek.Week]bool{}
	for _, weeks := range a.cells {
		for w := range weeks {
			seen[w] = true
		}
	}
	out := make([]isoweek.Week, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Codes is every code seen as an origin or a destination, sorted bytewise.
func (a *Accumulator) Codes() []string {
	seen := map[string]bool{}
	for p := range a.cells {
		seen[p.Origin] = true
		seen[p.Destination] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Each visits every (pair, week, count) cell in sorted order.
func (a *Accumulator) Each(fn func(p fm.Pair, w isoweek.Week, n int)) {
	for _, p := range a.Pairs() {
		weeks := a.cells[p]
		ws := make([]isoweek.Week, 0, len(weeks))
		for w := range weeks {
			ws = append(ws, w)
		}
		sort.Slice(ws, func(i, j int) bool { return ws[i].Less(ws[j]) })
		for _, w := range ws {
			fn(p, w, weeks[w])
		}
	}
}
