package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covidflights/flightmatrix/isoweek"
)

func TestParseWeekArg(t *testing.T) {
	w, err := parseWeekArg("2020-01-06")
	require.NoError(t, err)
	assert.Equal(t, isoweek.Week{Year: 2020, Week: 2}, w)

	w, err = parseWeekArg("2021-01-01")
	require.NoError(t, err)
	assert.Equal(t, isoweek.Week{Year: 2020, Week: 53}, w)

	w, err = parseWeekArg("2020-53")
	require.NoError(t, err)
	assert.Equal(t, "2020-53  Mon 2020-12-28 .. Sun 2021-01-03", describeWeek(w))

	_, err = parseWeekArg("2019-53")
	assert.Error(t, err)
	_, err = parseWeekArg("next tuesday")
	assert.Error(t, err)
}

func TestRunDryRun(t *testing.T) {
	rootCmd.SetArgs([]string{"run", "--dry-run", "--config", t.TempDir() + "/none.yaml", "matrices"})
	require.NoError(t, rootCmd.Execute())
}
