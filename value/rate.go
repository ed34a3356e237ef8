package value

import (
	"regexp"
	"strconv"
	"strings"
)

// RateKind tells how a freight rate is expressed.
type RateKind string

const (
	RateWorldscale RateKind = "worldscale"
	RateLumpSum    RateKind = "lump_sum"
	RatePerTon     RateKind = "per_ton"
	RateUnknown    RateKind = ""
)

// Rate is a parsed freight rate. Raw always holds the cleaned input; Value
// is nil for undisclosed rates ("RNR", "O/P").
type Rate struct {
	Kind  RateKind
	Value *float64
	Raw   string
}

var (
	worldscaleRegex = regexp.MustCompile(`(?i)^W\.?S\.?\s*(\d+(?:\.\d+)?)$`)
	lumpSumRegex    = regexp.MustCompile(`(?i)^(?:USD|US\$|\$)\s*(\d[\d.,]*)\s*([KM])?(?:\s*L/?S(?:UM)?)?$`)
	perTonRegex     = regexp.MustCompile(`(?i)^(?:USD|US\$|\$)\s*(\d+(?:\.\d+)?)\s*(?:/\s*(?:T|MT|TON)|PMT|PER\s*(?:T|MT|TON))$`)
	undisclosedRate = map[string]bool{"RNR": true, "O/P": true, "OP": true, "P&C": true, "PNC": true, "COA": true}
)

// ParseRate parses a fixture rate column. Unrecognized forms keep only Raw.
func ParseRate(s string) Rate {
	s = strings.Join(strings.Fields(s), " ")
	r := Rate{Raw: s}
	if s == "" || undisclosedRate[strings.ToUpper(s)] {
		return r
	}

	if m := worldscaleRegex.FindStringSubmatch(s); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.Kind, r.Value = RateWorldscale, &f
		}
		return r
	}

	if m := perTonRegex.FindStringSubmatch(s); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.Kind, r.Value = RatePerTon, &f
		}
		return r
	}

	if m := lumpSumRegex.FindStringSubmatch(s); m != nil {
		// "$1.125M" is a decimal; "$1,125,000" carries separators.
		var f float64
		var err error
		switch strings.ToUpper(m[2]) {
		case "K":
			f, err = strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
			f *= 1_000
		case "M":
			f, err = strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
			f *= 1_000_000
		default:
			f, err = Number(m[1])
		}
		if err != nil {
			return r
		}
		r.Kind, r.Value = RateLumpSum, &f
		return r
	}

	return r
}
