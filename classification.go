package flightmatrix

import "fmt"

/* Each end of a flight becomes an axis code for the matrices.

  In-bloc airport, region granularity:   its ISO region   (FR-IDF)
  In-bloc airport, country granularity:  its ISO country  (FR)
  Anywhere else:                         continent token  (_AS)

The underscore keeps external traffic visible, and sorts after every
ISO code, so fallback rows sit together at the end of the axis.
*/

type Granularity int

const (
	RegionLevel Granularity = iota
	CountryLevel
)

func (g Granularity) String() string {
	switch g {
	case RegionLevel:
		return "region"
	case CountryLevel:
		return "country"
	default:
		return "unknown"
	}
}

func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "region", "regions":
		return RegionLevel, nil
	case "country", "countries":
		return CountryLevel, nil
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

type ClassificationKind int

const (
	RegionCode ClassificationKind = iota
	CountryCode
	ContinentFallback
)

// FallbackPrefix marks continent tokens on the axis.
const FallbackPrefix = "_"

// Classification is a tagged variant; Code holds the bare code for its Kind.
type Classification struct {
	Kind ClassificationKind
	Code string
}

// String is the axis code.
func (c Classification) String() string {
	if c.Kind == ContinentFallback {
		return FallbackPrefix + c.Code
	}
	return c.Code
}

// IsFallbackCode reports whether an axis code is a continent token.
func IsFallbackCode(code string) bool {
	return len(code) > 0 && code[:1] == FallbackPrefix
}

// Classify places an airport on the axis at the given granularity.
func Classify(a Airport, g Granularity, bloc Bloc) Classification {
	if !bloc.Contains(a.Country) {
		return Classification{Kind: ContinentFallback, Code: a.Continent}
	}
	if g == RegionLevel {
		return Classification{Kind: RegionCode, Code: a.Region}
	}
	return Classification{Kind: CountryCode, Code: NormalizeCountryCode(a.Country)}
}
