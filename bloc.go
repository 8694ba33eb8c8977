package flightmatrix

import "sort"

// DefaultBloc is the EU + EEA + CH set of countries tracked individually; all
// other traffic collapses to a continent token. ISO codes throughout, so
// Greece is GR here even though the ECDC feed calls it EL.
var DefaultBloc = []string{
	"AT", "BE", "BG", "CH", "CY", "CZ", "DE", "DK", "EE", "ES",
	"FI", "FR", "GR", "HR", "HU", "IE", "IS", "IT", "LI", "LT",
	"LU", "LV", "MT", "NL", "NO", "PL", "PT", "RO", "SE", "SI",
	"SK",
}

// Feed-specific country codes that differ from ISO 3166-1.
var countryCodeAliases = map[string]string{
	"EL": "GR", // ECDC uses the EU protocol code for Greece
}

// NormalizeCountryCode maps feed-specific codes onto ISO 3166-1 alpha-2.
func NormalizeCountryCode(code string) string {
	if iso, ok := countryCodeAliases[code]; ok {
		return iso
	}
	return code
}

// Bloc is the allow-list of tracked countries.
type Bloc map[string]bool

// NewBloc normalises each code, so a list written in ECDC codes still works.
func NewBloc(codes []string) Bloc {
	b := Bloc{}
	for _, c := range codes {
		b[NormalizeCountryCode(c)] = true
	}
	return b
}

func (b Bloc) Contains(country string) bool { return b[NormalizeCountryCode(country)] }

func (b Bloc) Codes() []string {
	codes := make([]string, 0, len(b))
	for c := range b {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
