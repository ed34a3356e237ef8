// Package laycan resolves the partial date expressions found in fixture
// lists, port line-ups and statistics pages ("29-01/12", "END OCT",
// "5-7-Sept") into absolute date ranges, using the report's publication date
// as the anchor for the missing month and year.
//
// Resolution happens in two steps. Classify maps the raw text onto one of a
// closed set of Expression variants by trying a fixed, ordered table of
// patterns (numeric forms are read day first). Resolve then places the
// expression in the calendar:
//
//   - the year comes from the anchor, corrected across the year boundary
//     (a December date reported in January belongs to the previous year, a
//     January date reported in December to the next one);
//   - early/mid/end map to days 1-7, 14-21 and the last seven days;
//   - a day range whose start day is after its end day starts in the
//     previous month, following the configured Rollover policy;
//   - days past the end of a month clamp to its last day.
//
// Unparseable input yields the zero Range and an error wrapping
// ErrUnparseable; callers decide whether that drops the record.
package laycan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ISOLayout is the timestamp layout used for resolved dates in normalized
// records.
const ISOLayout = "2006-01-02T15:04:05"

// Resolver errors.
var (
	ErrUnparseable     = errors.New("unparseable date expression")
	ErrNoAnchor        = errors.New("no anchor date")
	ErrUnknownRollover = errors.New("unknown rollover policy")
)

// Rollover selects how a day range such as "30-01 APR" is moved into the
// previous month when its start day is after its end day.
type Rollover int

const (
	// RolloverMonthEnd shifts the start back one month. A start day equal to
	// the last day of the named month is read as "month end" and becomes the
	// last day of the previous month ("30-01 APR" starts on 31 March).
	RolloverMonthEnd Rollover = iota
	// RolloverShiftMonth keeps the literal start day in the previous month
	// ("30-01 APR" starts on 30 March).
	RolloverShiftMonth
)

func (r Rollover) String() string {
	switch r {
	case RolloverMonthEnd:
		return "month_end"
	case RolloverShiftMonth:
		return "shift_month"
	default:
		return fmt.Sprintf("rollover(%d)", int(r))
	}
}

// ParseRollover parses a policy name as written in adapter profiles. The
// empty string selects the default policy.
func ParseRollover(s string) (Rollover, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month_end":
		return RolloverMonthEnd, nil
	case "shift_month":
		return RolloverShiftMonth, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRollover, s)
	}
}

// Range is a resolved [Start, End] pair of dates. The zero Range stands for
// an expression that could not be resolved.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is the null range.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// ISO formats both ends with ISOLayout. The null range formats as two empty
// strings.
func (r Range) ISO() (start, end string) {
	if r.IsZero() {
		return "", ""
	}
	return r.Start.Format(ISOLayout), r.End.Format(ISOLayout)
}

func (r Range) String() string {
	if r.IsZero() {
		return "(null, null)"
	}
	return fmt.Sprintf("(%s, %s)", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocales enables localized month-name tables ("it", "es", "pt"). They
// are consulted in the given order before the English names.
func WithLocales(locales ...string) Option {
	return func(r *Resolver) {
		for _, l := range locales {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				r.locales = append(r.locales, l)
			}
		}
	}
}

// WithRollover sets the previous-month policy for day ranges.
func WithRollover(p Rollover) Option {
	return func(r *Resolver) {
		r.rollover = p
	}
}

// WithCache memoizes resolutions per (expression, anchor). Fixture lists
// repeat the same laycan on many rows.
func WithCache(ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache.New(ttl, 2*ttl)
	}
}

// Resolver classifies and resolves expressions. It is safe for concurrent use.
type Resolver struct {
	locales  []string
	rollover Rollover
	cache    *cache.Cache
}

// New creates a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Locales returns the localized tables enabled on this resolver.
func (r *Resolver) Locales() []string {
	return append([]string(nil), r.locales...)
}

// Rollover returns the configured previous-month policy.
func (r *Resolver) Rollover() Rollover {
	return r.rollover
}

// Classify maps raw text onto an Expression variant.
func (r *Resolver) Classify(expr string) Expression {
	return classify(expr, r.locales)
}

type cached struct {
	rng Range
	err error
}

// Resolve classifies expr and places it in the calendar relative to anchor.
func (r *Resolver) Resolve(expr string, anchor time.Time) (Range, error) {
	if anchor.IsZero() {
		return Range{}, ErrNoAnchor
	}
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	if r.cache == nil {
		return r.ResolveExpression(r.Classify(expr), anchor)
	}

	key := normalize(expr) + "|" + anchor.Format(time.DateOnly)
	if v, ok := r.cache.Get(key); ok {
		c := v.(cached)
		return c.rng, c.err
	}

	rng, err := r.ResolveExpression(r.Classify(expr), anchor)
	r.cache.SetDefault(key, cached{rng: rng, err: err})
	return rng, err
}

// ResolveExpression resolves an already classified expression.
func (r *Resolver) ResolveExpression(e Expression, anchor time.Time) (Range, error) {
	if anchor.IsZero() {
		return Range{}, ErrNoAnchor
	}

	switch e := e.(type) {
	case FullDate:
		d := date(e.Year, e.Month, e.Day)
		return Range{Start: d, End: d}, nil

	case SingleDay:
		m := e.Month
		if m == 0 {
			m = anchor.Month()
		}
		d := date(inferYear(m, anchor), m, e.Day)
		return Range{Start: d, End: d}, nil

	case DayRange:
		year := e.Year
		if year == 0 {
			year = inferYear(e.Month, anchor)
		}
		start := date(year, e.Month, e.StartDay)
		end := date(year, e.Month, e.EndDay)
		if start.After(end) {
			start = r.rollStart(year, e.Month, e.StartDay)
		}
		return Range{Start: start, End: end}, nil

	case CrossMonthRange:
		start := date(inferYear(e.StartMonth, anchor), e.StartMonth, e.StartDay)
		endYear := inferYear(e.EndMonth, anchor)
		end := date(endYear, e.EndMonth, e.EndDay)
		if end.Before(start) {
			end = date(endYear+1, e.EndMonth, e.EndDay)
		}
		return Range{Start: start, End: end}, nil

	case VagueDay:
		m := e.Month
		if m == 0 {
			m = anchor.Month()
		}
		year := inferYear(m, anchor)
		n := DaysIn(year, m)
		switch e.Keyword {
		case KeywordEarly:
			return Range{Start: date(year, m, 1), End: date(year, m, 7)}, nil
		case KeywordMid:
			return Range{Start: date(year, m, 14), End: date(year, m, 21)}, nil
		case KeywordEnd:
			return Range{Start: date(year, m, n-6), End: date(year, m, n)}, nil
		}

	case WholeMonth:
		year := e.Year
		if year == 0 {
			year = inferYear(e.Month, anchor)
		}
		return Range{Start: date(year, e.Month, 1), End: date(year, e.Month, DaysIn(year, e.Month))}, nil

	case Unparseable:
		return Range{}, fmt.Errorf("%w: %q", ErrUnparseable, e.Raw)
	}

	return Range{}, fmt.Errorf("%w: %v", ErrUnparseable, e)
}

// rollStart places a range start in the month before the named month.
func (r *Resolver) rollStart(year int, m time.Month, startDay int) time.Time {
	py, pm := previousMonth(year, m)
	if r.rollover == RolloverMonthEnd && startDay == DaysIn(year, m) {
		return date(py, pm, DaysIn(py, pm))
	}
	return date(py, pm, startDay)
}

// inferYear takes the anchor's year, corrected when the anchor and the
// resolved month sit on opposite sides of the new year.
func inferYear(m time.Month, anchor time.Time) int {
	year := anchor.Year()
	switch {
	case m == time.December && anchor.Month() == time.January:
		return year - 1
	case m == time.January && anchor.Month() == time.December:
		return year + 1
	}
	return year
}

// Classify is a convenience wrapper around New(opts...).Classify.
func Classify(expr string, opts ...Option) Expression {
	return New(opts...).Classify(expr)
}

// Resolve is a convenience wrapper around New(opts...).Resolve.
func Resolve(expr string, anchor time.Time, opts ...Option) (Range, error) {
	return New(opts...).Resolve(expr, anchor)
}
