package matrix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fm "github.com/covidflights/flightmatrix"
	"github.com/covidflights/flightmatrix/accum"
	"github.com/covidflights/flightmatrix/isoweek"
)

var (
	w2  = isoweek.Week{Year: 2020, Week: 2}
	w10 = isoweek.Week{Year: 2020, Week: 10}
)

func sample() *accum.Accumulator {
	a := accum.New()
	a.AddN(fm.Pair{Origin: "FR", Destination: "DE"}, w2, 3)
	a.AddN(fm.Pair{Origin: "DE", Destination: "FR"}, w2, 2)
	a.AddN(fm.Pair{Origin: "FR", Destination: "_AS"}, w2, 4)
	a.AddN(fm.Pair{Origin: "GR", Destination: "FR"}, w10, 1)
	return a
}

func TestBuild(t *testing.T) {
	out := Build(sample(), Options{})

	assert.Equal(t, []string{"DE", "FR", "GR", "_AS"}, out.Countries)
	assert.Equal(t, []string{"2020-02", "2020-10"}, out.Weeks())
	assert.Equal(t, [][]int{
		{0, 2, 0, 0},
		{3, 0, 0, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, out.YearMonth["2020-02"])
	assert.Equal(t, map[string]int{"2020-02": 9, "2020-10": 1}, out.TotalNumOfFlights)
	assert.Equal(t, 3, out.Cell("2020-02", "FR", "DE"))
	assert.Equal(t, 0, out.Cell("2020-02", "FR", "XX"))
	assert.Equal(t, 0, out.Cell("2020-03", "FR", "DE"))
	assert.NoError(t, out.Check())
}

func TestBuildExcludeExternal(t *testing.T) {
	out := Build(sample(), Options{ExcludeExternal: true})

	assert.Equal(t, []string{"DE", "FR", "GR", "_AS"}, out.Countries, "fallback codes stay on the axis")
	assert.Equal(t, 0, out.Cell("2020-02", "FR", "_AS"))
	assert.Equal(t, 5, out.TotalNumOfFlights["2020-02"])
	assert.NoError(t, out.Check())
}

func TestBuildEmpty(t *testing.T) {
	out := Build(accum.New(), Options{})
	assert.Empty(t, out.Countries)
	assert.Empty(t, out.YearMonth)

	var buf bytes.Buffer
	require.NoError(t, out.WriteJSON(&buf))
	assert.Equal(t, `{"yearMonth":{},"countries":[],"totalNumOfFlights":{}}`+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	a := accum.New()
	a.AddN(fm.Pair{Origin: "FR", Destination: "DE"}, w2, 1)

	var buf bytes.Buffer
	require.NoError(t, Build(a, Options{}).WriteJSON(&buf))
	assert.Equal(t, `{"yearMonth":{"2020-02":[[0,0],[1,0]]},"countries":["DE","FR"],"totalNumOfFlights":{"2020-02":1}}`+"\n", buf.String())
}

func TestWriteJSONIsDeterministic(t *testing.T) {
	var first bytes.Buffer
	require.NoError(t, Build(sample(), Options{}).WriteJSON(&first))
	for i := 0; i < 10; i++ {
		var again bytes.Buffer
		require.NoError(t, Build(sample(), Options{}).WriteJSON(&again))
		assert.Equal(t, first.String(), again.String())
	}
}

func TestRoundTripTotals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(sample(), Options{}).WriteJSON(&buf))

	out, err := ReadJSON(&buf)
	require.NoError(t, err)
	require.NoError(t, out.Check())
	for week, m := range out.YearMonth {
		sum := 0
		for _, row := range m {
			for _, v := range row {
				sum += v
			}
		}
		assert.Equal(t, out.TotalNumOfFlights[week], sum, week)
	}
}

func TestCheckCatchesBadTotals(t *testing.T) {
	out := Build(sample(), Options{})
	out.TotalNumOfFlights["2020-02"]++
	assert.Error(t, out.Check())

	out = Build(sample(), Options{})
	out.YearMonth["2020-02"] = out.YearMonth["2020-02"][:2]
	assert.Error(t, out.Check())
}
