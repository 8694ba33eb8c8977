// Package isoweek converts between calendar dates and ISO-8601 weeks. Weeks
// run Monday to Sunday; a week belongs to the year that holds its Thursday.
package isoweek

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Week is an ISO year plus an ISO week number (1..53).
type Week struct {
	Year int
	Week int
}

// Of returns the ISO week containing the calendar date of t. Only the date in
// t's own location matters; the time of day is ignored.
func Of(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// FirstDay returns the Monday, at UTC midnight, that starts the given ISO week.
// January 4th always falls in week 1, so we anchor on the Monday on or before it.
func FirstDay(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

// WeeksInYear is 53 for years whose 28th of December lands in week 53, else 52.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

func (w Week) String() string { return fmt.Sprintf("%04d-%02d", w.Year, w.Week) }

func (w Week) Valid() bool { return w.Week >= 1 && w.Week <= WeeksInYear(w.Year) }

// Start is the Monday beginning the week.
func (w Week) Start() time.Time { return FirstDay(w.Year, w.Week) }

func (w Week) Next() Week { return Of(w.Start().AddDate(0, 0, 7)) }

func (w Week) Less(o Week) bool {
	if w.Year != o.Year {
		return w.Year < o.Year
	}
	return w.Week < o.Week
}

// Parse reads the canonical "YYYY-WW" form; the week need not be zero padded.
func Parse(s string) (Week, error) {
	y, wk, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Week{}, fmt.Errorf("isoweek: %q is not YYYY-WW", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Week{}, fmt.Errorf("isoweek: bad year in %q: %w", s, err)
	}
	week, err := strconv.Atoi(wk)
	if err != nil {
		return Week{}, fmt.Errorf("isoweek: bad week in %q: %w", s, err)
	}
	w := Week{Year: year, Week: week}
	if !w.Valid() {
		return Week{}, fmt.Errorf("isoweek: %q out of range (year has %d weeks)", s, WeeksInYear(year))
	}
	return w, nil
}

// Between lists every week from a to b inclusive, in order.
func Between(a, b Week) []Week {
	weeks := []Week{}
	for w := a; !b.Less(w); w = w.Next() {
		weeks = append(weeks, w)
	}
	return weeks
}
