package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOf(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2020-01-06", "2020-02"},
		{"2020-01-01", "2020-01"},
		{"2019-12-30", "2020-01"}, // late December in next year's week 1
		{"2021-01-03", "2020-53"}, // early January in previous year's week 53
		{"2021-01-04", "2021-01"},
		{"2022-01-02", "2021-52"},
		{"2020-12-31", "2020-53"},
		{"2018-12-31", "2019-01"},
		{"2016-01-03", "2015-53"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(day(tt.date)).String())
		})
	}
}

func TestOfIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2020, time.January, 5, 23, 59, 59, 0, time.UTC)
	early := time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Of(early), Of(late))
	assert.Equal(t, Week{2020, 1}, Of(late))
}

func TestFirstDay(t *testing.T) {
	tests := []struct {
		year, week int
		want       string
	}{
		{2020, 1, "2019-12-30"},
		{2020, 2, "2020-01-06"},
		{2020, 53, "2020-12-28"},
		{2021, 1, "2021-01-04"},
		{2015, 53, "2015-12-28"},
		{2026, 1, "2025-12-29"},
	}

	for _, tt := range tests {
		got := FirstDay(tt.year, tt.week)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "%d-%02d", tt.year, tt.week)
		assert.Equal(t, time.Monday, got.Weekday())
	}
}

func TestRoundTrip(t *testing.T) {
	for year := 1990; year <= 2040; year++ {
		for week := 1; week <= WeeksInYear(year); week++ {
			w := Week{year, week}
			require.Equal(t, w, Of(FirstDay(year, week)), "week %s", w)
			// every day of the week maps back to it
			for d := 0; d < 7; d++ {
				require.Equal(t, w, Of(FirstDay(year, week).AddDate(0, 0, d)))
			}
		}
	}
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 53, WeeksInYear(2015))
	assert.Equal(t, 52, WeeksInYear(2019))
	assert.Equal(t, 52, WeeksInYear(2021))
	assert.Equal(t, 53, WeeksInYear(2026))
}

func TestParse(t *testing.T) {
	w, err := Parse("2020-02")
	require.NoError(t, err)
	assert.Equal(t, Week{2020, 2}, w)

	w, err = Parse("2020-7")
	require.NoError(t, err)
	assert.Equal(t, "2020-07", w.String())

	for _, bad := range []string{"", "2020", "2020-xx", "abcd-01", "2019-53", "2020-00"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestLessAndBetween(t *testing.T) {
	assert.True(t, Week{2019, 52}.Less(Week{2020, 1}))
	assert.False(t, Week{2020, 1}.Less(Week{2020, 1}))

	weeks := Between(Week{2020, 52}, Week{2021, 2})
	require.Len(t, weeks, 4)
	assert.Equal(t, []Week{{2020, 52}, {2020, 53}, {2021, 1}, {2021, 2}}, weeks)

	assert.Empty(t, Between(Week{2021, 2}, Week{2021, 1}))
}
