package helpers

import (
	"regexp"
	"strings"
)

// ZoneAliases maps broker shorthand for loading and discharge areas to the
// canonical zone name. Keys are upper case.
var ZoneAliases = map[string]string{
	// Americas
	"USG":     "US Gulf",
	"USGC":    "US Gulf",
	"US GULF": "US Gulf",
	"USAC":    "US Atlantic Coast",
	"USEC":    "US Atlantic Coast",
	"USWC":    "US West Coast",
	"CARIBS":  "Caribbean",
	"CARIB":   "Caribbean",
	"ECSA":    "East Coast South America",
	"WCSA":    "West Coast South America",
	"ECMEX":   "East Coast Mexico",
	"BRAZIL":  "Brazil",

	// Europe
	"ARA":    "Amsterdam-Rotterdam-Antwerp",
	"UKC":    "UK Continent",
	"UKCONT": "UK Continent",
	"NWE":    "North West Europe",
	"BALT":   "Baltic",
	"MED":    "Mediterranean",
	"WMED":   "West Mediterranean",
	"EMED":   "East Mediterranean",
	"BSEA":   "Black Sea",
	"B.SEA":  "Black Sea",

	// Middle East and Africa
	"AG":   "Arabian Gulf",
	"MEG":  "Arabian Gulf",
	"PG":   "Arabian Gulf",
	"RSEA": "Red Sea",
	"WAF":  "West Africa",
	"EAF":  "East Africa",
	"SAF":  "South Africa",

	// Asia Pacific
	"WCI":    "West Coast India",
	"ECI":    "East Coast India",
	"SPORE":  "Singapore",
	"SING":   "Singapore",
	"FE":     "Far East",
	"SKOR":   "South Korea",
	"NCHINA": "North China",
	"SCHINA": "South China",
	"AUS":    "Australia",
	"OZ":     "Australia",
}

// ProductAliases maps trade names and abbreviations to canonical product
// names. Keys are upper case.
var ProductAliases = map[string]string{
	// Crude and dirty
	"CRUDE": "crude oil",
	"CO":    "crude oil",
	"COND":  "condensate",
	"FO":    "fuel oil",
	"HFO":   "fuel oil",
	"HSFO":  "fuel oil",
	"LSFO":  "low sulphur fuel oil",
	"VLSFO": "low sulphur fuel oil",
	"DPP":   "dirty petroleum products",

	// Clean
	"CPP":      "clean petroleum products",
	"UMS":      "gasoline",
	"MOGAS":    "gasoline",
	"GASOLINE": "gasoline",
	"NAP":      "naphtha",
	"NAPHTHA":  "naphtha",
	"JET":      "jet fuel",
	"JET A1":   "jet fuel",
	"KERO":     "kerosene",
	"GO":       "gasoil",
	"GASOIL":   "gasoil",
	"ULSD":     "diesel",
	"DIESEL":   "diesel",

	// Gases
	"LPG": "lpg",
	"C3":  "propane",
	"C4":  "butane",
	"NC4": "normal butane",
	"IC4": "isobutane",
	"LNG": "lng",
	"NH3": "ammonia",
	"C2":  "ethane",
	"C2=": "ethylene",
	"C3=": "propylene",

	// Chemicals and dry
	"BZ":    "benzene",
	"MX":    "mixed xylenes",
	"PX":    "paraxylene",
	"MEOH":  "methanol",
	"SBM":   "soybean meal",
	"SOYA":  "soybeans",
	"CORN":  "corn",
	"SUGAR": "sugar",
}

// UnknownSentinels are placeholders brokers write where a value is not yet
// known. A field holding only a sentinel is treated as missing.
var UnknownSentinels = []string{
	"TBN", "TBA", "TBC", "CNR", "N/A", "NA", "UNKNOWN", "-", "?", "NIL",
}

// VesselPatterns strip the vessel-type and ownership qualifiers seen around
// vessel names ("M/T KRITI RUBY (O/O)").
var VesselPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:M[./]?[VT]|S[./]?S|LPG/?C|LNG/?C)\.?\s+`),
	regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]\s*$`),
}

// VesselBlacklist are ownership and status tokens that never form part of a
// vessel name.
var VesselBlacklist = []string{"O/O", "OO", "RPLC", "REPLACED", "FAILED", "SUBS"}

// PartyPatterns strip the "TO ORDER" forms and trailing reference numbers
// found in charterer, shipper and consignee columns.
var PartyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^TO\s+(?:THE\s+)?ORDER(?:\s+OF)?\s*`),
	regexp.MustCompile(`(?i)\s+REF\.?\s*[#:]?\s*\S+$`),
}

// companySuffixes are legal-form suffixes dropped when comparing parties.
var companySuffixes = []string{"LIMITED", "LTD", "INC", "LLC", "CORP", "CO", "SA", "S.A.", "SPA", "S.P.A.", "AG", "GMBH", "BV", "B.V.", "PTE", "PLC", "NV", "N.V."}

// VesselCleaner returns the cleaner used for vessel names: type prefixes,
// bracketed qualifiers and ownership tokens removed, upper case.
func VesselCleaner() *Cleaner {
	return NewCleaner(
		WithHTML(),
		WithPatterns(VesselPatterns...),
		WithBlacklist(VesselBlacklist...),
		WithBlacklist(UnknownSentinels...),
		WithCasing(CasingUpper),
	)
}

// TextCleaner returns the cleaner used for free-text fields.
func TextCleaner() *Cleaner {
	return NewCleaner(WithHTML(), WithPatterns(PartyPatterns...))
}

// IsUnknown reports whether s is empty or a placeholder sentinel.
func IsUnknown(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	for _, sentinel := range UnknownSentinels {
		if s == sentinel {
			return true
		}
	}
	return false
}

// Zone returns the canonical zone name for a broker abbreviation. Unknown
// zones are returned cleaned but otherwise unchanged.
func Zone(s string) string {
	s = NormalizeWhitespace(s)
	if z, ok := ZoneAliases[strings.ToUpper(s)]; ok {
		return z
	}
	return s
}

// Product returns the canonical product name. Unknown products are returned
// lower-cased.
func Product(s string) string {
	s = NormalizeWhitespace(s)
	if p, ok := ProductAliases[strings.ToUpper(s)]; ok {
		return p
	}
	return strings.ToLower(s)
}

// NormalizeParty strips legal-form suffixes from a company name so that
// "SHELL INTERNATIONAL LTD" and "Shell International" compare equal.
func NormalizeParty(name string) string {
	name = strings.ToUpper(NormalizeWhitespace(name))
	for {
		trimmed := trimCompanySuffix(name)
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

func trimCompanySuffix(name string) string {
	name = strings.TrimRight(name, " ,")
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(name, " "+suffix) {
			return strings.TrimSuffix(name, " "+suffix)
		}
	}
	return name
}

// SplitParties splits a cell that names several parties. Semicolons,
// " AND " and spaced slashes separate parties; "O/O" does not.
func SplitParties(s string) []string {
	if s == "" {
		return nil
	}

	if strings.Contains(s, ";") {
		return cleanList(strings.Split(s, ";"))
	}

	upper := strings.ToUpper(s)
	if idx := strings.Index(upper, " AND "); idx >= 0 {
		return cleanList([]string{s[:idx], s[idx+5:]})
	}

	if strings.Contains(s, " / ") {
		return cleanList(strings.Split(s, " / "))
	}

	return []string{strings.TrimSpace(s)}
}

func cleanList(parts []string) []string {
	var result []string
	for _, p := range parts {
		p = NormalizeWhitespace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
