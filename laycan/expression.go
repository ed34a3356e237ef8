package laycan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Keyword is the vague-day vocabulary used in fixture reports.
type Keyword int

const (
	KeywordEarly Keyword = iota + 1 // days 1-7
	KeywordMid                      // days 14-21
	KeywordEnd                      // last seven days
)

func (k Keyword) String() string {
	switch k {
	case KeywordEarly:
		return "early"
	case KeywordMid:
		return "mid"
	case KeywordEnd:
		return "end"
	default:
		return "unknown"
	}
}

var keywords = map[string]Keyword{
	"EARLY":     KeywordEarly,
	"ELY":       KeywordEarly,
	"BEG":       KeywordEarly,
	"BEGINNING": KeywordEarly,
	"MID":       KeywordMid,
	"MIDDLE":    KeywordMid,
	"END":       KeywordEnd,
	"LATE":      KeywordEnd,
}

// Expression is a classified partial date. The set of variants is closed.
type Expression interface {
	fmt.Stringer
	expression()
}

// SingleDay is a day of a month with no year ("6-Nov", "12/5").
// Month 0 means the anchor's month.
type SingleDay struct {
	Day   int
	Month time.Month
}

// DayRange is a range of days within one named month ("5-7-Sept", "29-01/12",
// "3-5 NOV 2018"). The start may belong to the previous month when
// StartDay > EndDay. Year 0 is inferred from the anchor.
type DayRange struct {
	StartDay int
	EndDay   int
	Month    time.Month
	Year     int
}

// CrossMonthRange carries an explicit month on both ends ("28 DEC-3 JAN").
type CrossMonthRange struct {
	StartDay   int
	StartMonth time.Month
	EndDay     int
	EndMonth   time.Month
}

// VagueDay is an early/mid/end qualifier ("END OCT", "Mid Nov", "END").
// Month 0 means the anchor's month.
type VagueDay struct {
	Keyword Keyword
	Month   time.Month
}

// WholeMonth covers a full calendar month ("NOV 2018"). Year 0 is inferred
// from the anchor.
type WholeMonth struct {
	Month time.Month
	Year  int
}

// FullDate already carries a year and needs no anchor.
type FullDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Unparseable holds input that matched no known shape.
type Unparseable struct {
	Raw string
}

func (SingleDay) expression()       {}
func (DayRange) expression()        {}
func (CrossMonthRange) expression() {}
func (VagueDay) expression()        {}
func (WholeMonth) expression()      {}
func (FullDate) expression()        {}
func (Unparseable) expression()     {}

func (e SingleDay) String() string {
	return fmt.Sprintf("SingleDay(%d, %s)", e.Day, monthName(e.Month))
}

func (e DayRange) String() string {
	if e.Year == 0 {
		return fmt.Sprintf("DayRange(%d-%d, %s)", e.StartDay, e.EndDay, monthName(e.Month))
	}
	return fmt.Sprintf("DayRange(%d-%d, %s %d)", e.StartDay, e.EndDay, monthName(e.Month), e.Year)
}

func (e CrossMonthRange) String() string {
	return fmt.Sprintf("CrossMonthRange(%d %s - %d %s)", e.StartDay, monthName(e.StartMonth), e.EndDay, monthName(e.EndMonth))
}

func (e VagueDay) String() string {
	return fmt.Sprintf("VagueDay(%s, %s)", e.Keyword, monthName(e.Month))
}

func (e WholeMonth) String() string {
	if e.Year == 0 {
		return fmt.Sprintf("WholeMonth(%s)", monthName(e.Month))
	}
	return fmt.Sprintf("WholeMonth(%s %d)", monthName(e.Month), e.Year)
}

func (e FullDate) String() string {
	return fmt.Sprintf("FullDate(%04d-%02d-%02d)", e.Year, int(e.Month), e.Day)
}

func (e Unparseable) String() string {
	return fmt.Sprintf("Unparseable(%q)", e.Raw)
}

func monthName(m time.Month) string {
	if m == 0 {
		return "anchor month"
	}
	return m.String()
}

var (
	dashRegex    = regexp.MustCompile(`\s*[-–—‒]+\s*`)
	toRegex      = regexp.MustCompile(`\s+TO\s+`)
	ordinalRegex = regexp.MustCompile(`(\d)(?:ST|ND|RD|TH)\b`)
	letterDot    = regexp.MustCompile(`(\pL)\.`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// normalize upper-cases the expression and folds the separator variants seen
// across vendors into a single form: dashes without surrounding spaces,
// single spaces elsewhere.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", " ")
	s = toRegex.ReplaceAllString(s, "-")
	s = letterDot.ReplaceAllString(s, "$1 ")
	s = ordinalRegex.ReplaceAllString(s, "$1")
	s = spaceRegex.ReplaceAllString(s, " ")
	s = dashRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, " -/.")
}

// pattern is one entry of the classification table. build returns false when
// the captured tokens are out of range, in which case classification moves on.
type pattern struct {
	name  string
	re    *regexp.Regexp
	build func(m []string, locales []string) (Expression, bool)
}

const (
	dayGroup   = `(\d{1,2})`
	monthGroup = `(\pL{3,10})`
)

// patterns are tried in order; the first one that matches and validates wins.
// Numeric forms are day first: "12/5" is 12 May.
var patterns = []pattern{
	{
		name: "iso date",
		re:   regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:T.*)?$`),
		build: func(m []string, _ []string) (Expression, bool) {
			return fullDate(m[1], m[2], m[3], nil)
		},
	},
	{
		name: "numeric date with year",
		re:   regexp.MustCompile(`^` + dayGroup + `[/.-](\d{1,2})[/.-](\d{4})$`),
		build: func(m []string, _ []string) (Expression, bool) {
			return fullDate(m[3], m[2], m[1], nil)
		},
	},
	{
		name: "named date with year",
		re:   regexp.MustCompile(`^` + dayGroup + `[ -]?` + monthGroup + `[ -]?(\d{4}|\d{2})$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return fullDate(m[3], m[2], m[1], locales)
		},
	},
	{
		name: "month-first date with year",
		re:   regexp.MustCompile(`^` + monthGroup + ` ?` + dayGroup + ` (\d{4})$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return fullDate(m[3], m[1], m[2], locales)
		},
	},
	{
		name: "numeric day range with year",
		re:   regexp.MustCompile(`^` + dayGroup + `-` + dayGroup + `[/.](\d{1,2})[/.](\d{4})$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return datedDayRange(m[1], m[2], m[3], m[4], locales)
		},
	},
	{
		name: "named day range with year",
		re:   regexp.MustCompile(`^` + dayGroup + `[-/]` + dayGroup + `[ -]?` + monthGroup + `[ -]?(\d{4}|\d{2})$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return datedDayRange(m[1], m[2], m[3], m[4], locales)
		},
	},
	{
		name: "numeric cross-month range",
		re:   regexp.MustCompile(`^` + dayGroup + `[/.]` + dayGroup + `-` + dayGroup + `[/.]` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return crossMonth(m[1], m[2], m[3], m[4], locales)
		},
	},
	{
		name: "named cross-month range",
		re:   regexp.MustCompile(`^` + dayGroup + `[ -]?` + monthGroup + `-` + dayGroup + `[ -]?` + monthGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return crossMonth(m[1], m[2], m[3], m[4], locales)
		},
	},
	{
		name: "month-first cross-month range",
		re:   regexp.MustCompile(`^` + monthGroup + ` ?` + dayGroup + `-` + monthGroup + ` ?` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return crossMonth(m[2], m[1], m[4], m[3], locales)
		},
	},
	{
		name: "numeric day range",
		re:   regexp.MustCompile(`^` + dayGroup + `-` + dayGroup + `[/.]` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return dayRange(m[1], m[2], m[3], locales)
		},
	},
	{
		name: "named day range",
		re:   regexp.MustCompile(`^` + dayGroup + `[-/]` + dayGroup + `[ -]?` + monthGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return dayRange(m[1], m[2], m[3], locales)
		},
	},
	{
		name: "month-first day range",
		re:   regexp.MustCompile(`^` + monthGroup + ` ?` + dayGroup + `-` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return dayRange(m[2], m[3], m[1], locales)
		},
	},
	{
		name: "vague day",
		re:   regexp.MustCompile(`^(BEGINNING|BEG|EARLY|ELY|MIDDLE|MID|END|LATE)(?:[ -]?(\pL{3,10}|\d{1,2}))?$`),
		build: func(m []string, locales []string) (Expression, bool) {
			e := VagueDay{Keyword: keywords[m[1]]}
			if m[2] != "" {
				mo, ok := lookupMonth(m[2], locales)
				if !ok {
					return nil, false
				}
				e.Month = mo
			}
			return e, true
		},
	},
	{
		name: "whole month",
		re:   regexp.MustCompile(`^` + monthGroup + `(?:[ -]?(\d{4}))?$`),
		build: func(m []string, locales []string) (Expression, bool) {
			mo, ok := lookupMonth(m[1], locales)
			if !ok {
				return nil, false
			}
			e := WholeMonth{Month: mo}
			if m[2] != "" {
				e.Year, _ = strconv.Atoi(m[2])
			}
			return e, true
		},
	},
	{
		name: "named single day",
		re:   regexp.MustCompile(`^` + dayGroup + `[ -]?` + monthGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return singleDay(m[1], m[2], locales)
		},
	},
	{
		name: "month-first single day",
		re:   regexp.MustCompile(`^` + monthGroup + `[ -]?` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return singleDay(m[2], m[1], locales)
		},
	},
	{
		name: "numeric single day",
		re:   regexp.MustCompile(`^` + dayGroup + `[/.]` + dayGroup + `$`),
		build: func(m []string, locales []string) (Expression, bool) {
			return singleDay(m[1], m[2], locales)
		},
	},
	{
		name: "bare day",
		re:   regexp.MustCompile(`^` + dayGroup + `$`),
		build: func(m []string, _ []string) (Expression, bool) {
			d, ok := parseDay(m[1])
			if !ok {
				return nil, false
			}
			return SingleDay{Day: d}, true
		},
	},
}

// classify runs the pattern table against a normalized expression.
func classify(raw string, locales []string) Expression {
	s := normalize(raw)
	if s == "" {
		return Unparseable{Raw: raw}
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if e, ok := p.build(m, locales); ok {
			return e
		}
	}

	return Unparseable{Raw: raw}
}

func parseDay(s string) (int, bool) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func singleDay(d, mo string, locales []string) (Expression, bool) {
	dd, ok := parseDay(d)
	if !ok {
		return nil, false
	}
	m, ok := lookupMonth(mo, locales)
	if !ok {
		return nil, false
	}
	return SingleDay{Day: dd, Month: m}, true
}

func dayRange(start, end, mo string, locales []string) (Expression, bool) {
	sd, ok := parseDay(start)
	if !ok {
		return nil, false
	}
	ed, ok := parseDay(end)
	if !ok {
		return nil, false
	}
	m, ok := lookupMonth(mo, locales)
	if !ok {
		return nil, false
	}
	return DayRange{StartDay: sd, EndDay: ed, Month: m}, true
}

func datedDayRange(start, end, mo, y string, locales []string) (Expression, bool) {
	e, ok := dayRange(start, end, mo, locales)
	if !ok {
		return nil, false
	}
	year, ok := parseYear(y)
	if !ok {
		return nil, false
	}
	r := e.(DayRange)
	r.Year = year
	return r, true
}

func crossMonth(sd, sm, ed, em string, locales []string) (Expression, bool) {
	startDay, ok := parseDay(sd)
	if !ok {
		return nil, false
	}
	endDay, ok := parseDay(ed)
	if !ok {
		return nil, false
	}
	startMonth, ok := lookupMonth(sm, locales)
	if !ok {
		return nil, false
	}
	endMonth, ok := lookupMonth(em, locales)
	if !ok {
		return nil, false
	}
	return CrossMonthRange{StartDay: startDay, StartMonth: startMonth, EndDay: endDay, EndMonth: endMonth}, true
}

// parseYear reads a four digit year; two digits are taken as 20YY.
func parseYear(y string) (int, bool) {
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, false
	}
	if len(y) == 2 {
		year += 2000
	}
	return year, true
}

func fullDate(y, mo, d string, locales []string) (Expression, bool) {
	year, ok := parseYear(y)
	if !ok {
		return nil, false
	}
	m, ok := lookupMonth(mo, locales)
	if !ok {
		return nil, false
	}
	dd, ok := parseDay(d)
	if !ok {
		return nil, false
	}
	return FullDate{Year: year, Month: m, Day: dd}, true
}
