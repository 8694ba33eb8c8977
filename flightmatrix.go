// This package contains the shared types for the flight/COVID pipeline:
// airports, flights, the tracked-country bloc and axis classification.
// No I/O lives here.
package flightmatrix
