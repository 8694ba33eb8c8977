// flightmatrix builds the pre-aggregated flight and case data behind the
// COVID-19 flights chord diagram.
//
//	flightmatrix run                      # everything but publish
//	flightmatrix run matrices cases       # just those, plus what they need
//	flightmatrix format --granularity=regions
//	flightmatrix week 2020-01-06
//	flightmatrix serve
package main

func main() {
	Execute()
}
