package covid

import (
	"math"
	"sort"
)

// DefaultWindowDays is the trailing window: the record's own day plus the six
// before it.
const DefaultWindowDays = 7

// ComputeIncidence fills in Incidence for every record, in place. A record's
// window is every same-country record dated in the windowDays calendar days
// ending on its own date; days missing from the feed just contribute nothing.
// Records without a population get no incidence.
func ComputeIncidence(records []Record, windowDays int) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	byCountry := map[string][]int{}
	for i, r := range records {
		byCountry[r.Country] = append(byCountry[r.Country], i)
	}

	for _, idx := range byCountry {
		sort.SliceStable(idx, func(a, b int) bool { return records[idx[a]].Day.Before(records[idx[b]].Day) })

		// prefix[k] is the sum of cases of the first k records
		prefix := make([]int, len(idx)+1)
		for k, i := range idx {
			prefix[k+1] = prefix[k] + records[i].Cases
		}

		for _, i := range idx {
			r := &records[i]
			if r.Population <= 0 {
				r.Incidence, r.HasIncidence = 0, false
				continue
			}

			start := r.Day.AddDate(0, 0, -(windowDays - 1))
			lo := sort.Search(len(idx), func(k int) bool { return !records[idx[k]].Day.Before(start) })
			hi := sort.Search(len(idx), func(k int) bool { return records[idx[k]].Day.After(r.Day) })

			r.Incidence = incidence(prefix[hi]-prefix[lo], r.Population)
			r.HasIncidence = true
		}
	}
}

func incidence(cases int, pop int64) float64 {
	v := float64(cases) * 100000 / float64(pop)
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
