package laycan

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		anchor    time.Time
		opts      []Option
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "single day",
			expr:      "6-Nov",
			anchor:    day(2018, time.November, 5),
			wantStart: day(2018, time.November, 6),
			wantEnd:   day(2018, time.November, 6),
		},
		{
			name:      "day range same month",
			expr:      "5-7-Sept",
			anchor:    day(2018, time.November, 5),
			wantStart: day(2018, time.September, 5),
			wantEnd:   day(2018, time.September, 7),
		},
		{
			name:      "numeric day range rolls into previous month",
			expr:      "29-01/12",
			anchor:    day(2018, time.November, 26),
			wantStart: day(2018, time.November, 29),
			wantEnd:   day(2018, time.December, 1),
		},
		{
			name:      "month end start day",
			expr:      "30-01 APR",
			anchor:    day(2019, time.August, 17),
			wantStart: day(2019, time.March, 31),
			wantEnd:   day(2019, time.April, 1),
		},
		{
			name:      "shift month keeps literal day",
			expr:      "30-01 APR",
			anchor:    day(2019, time.August, 17),
			opts:      []Option{WithRollover(RolloverShiftMonth)},
			wantStart: day(2019, time.March, 30),
			wantEnd:   day(2019, time.April, 1),
		},
		{
			name:      "previous month too short clamps",
			expr:      "31-02 MAR",
			anchor:    day(2019, time.March, 1),
			opts:      []Option{WithRollover(RolloverShiftMonth)},
			wantStart: day(2019, time.February, 28),
			wantEnd:   day(2019, time.March, 2),
		},
		{
			name:      "range into january rolls back a year",
			expr:      "30-02 JAN",
			anchor:    day(2019, time.January, 3),
			wantStart: day(2018, time.December, 30),
			wantEnd:   day(2019, time.January, 2),
		},
		{
			name:      "december reported in january",
			expr:      "28 DEC",
			anchor:    day(2019, time.January, 2),
			wantStart: day(2018, time.December, 28),
			wantEnd:   day(2018, time.December, 28),
		},
		{
			name:      "january reported in december",
			expr:      "3 JAN",
			anchor:    day(2018, time.December, 20),
			wantStart: day(2019, time.January, 3),
			wantEnd:   day(2019, time.January, 3),
		},
		{
			name:      "cross month over new year",
			expr:      "28 DEC-3 JAN",
			anchor:    day(2018, time.December, 20),
			wantStart: day(2018, time.December, 28),
			wantEnd:   day(2019, time.January, 3),
		},
		{
			name:      "cross month over new year reported in january",
			expr:      "28/12-03/01",
			anchor:    day(2019, time.January, 2),
			wantStart: day(2018, time.December, 28),
			wantEnd:   day(2019, time.January, 3),
		},
		{
			name:      "cross month within year",
			expr:      "30 OCT-2 NOV",
			anchor:    day(2018, time.October, 15),
			wantStart: day(2018, time.October, 30),
			wantEnd:   day(2018, time.November, 2),
		},
		{
			name:      "end of month",
			expr:      "END OCT",
			anchor:    day(2018, time.October, 1),
			wantStart: day(2018, time.October, 25),
			wantEnd:   day(2018, time.October, 31),
		},
		{
			name:      "end of leap february",
			expr:      "END",
			anchor:    day(2020, time.February, 10),
			wantStart: day(2020, time.February, 23),
			wantEnd:   day(2020, time.February, 29),
		},
		{
			name:      "early",
			expr:      "early nov",
			anchor:    day(2018, time.October, 30),
			wantStart: day(2018, time.November, 1),
			wantEnd:   day(2018, time.November, 7),
		},
		{
			name:      "mid",
			expr:      "MID NOV",
			anchor:    day(2018, time.October, 30),
			wantStart: day(2018, time.November, 14),
			wantEnd:   day(2018, time.November, 21),
		},
		{
			name:      "whole month",
			expr:      "NOV",
			anchor:    day(2018, time.December, 6),
			wantStart: day(2018, time.November, 1),
			wantEnd:   day(2018, time.November, 30),
		},
		{
			name:      "whole month with explicit year",
			expr:      "FEB 2016",
			anchor:    day(2018, time.December, 6),
			wantStart: day(2016, time.February, 1),
			wantEnd:   day(2016, time.February, 29),
		},
		{
			name:      "non existent day clamps",
			expr:      "31/02",
			anchor:    day(2019, time.February, 1),
			wantStart: day(2019, time.February, 28),
			wantEnd:   day(2019, time.February, 28),
		},
		{
			name:      "bare day uses anchor month",
			expr:      "14",
			anchor:    day(2018, time.November, 5),
			wantStart: day(2018, time.November, 14),
			wantEnd:   day(2018, time.November, 14),
		},
		{
			name:      "full date ignores anchor",
			expr:      "2017-03-04",
			anchor:    day(2018, time.November, 5),
			wantStart: day(2017, time.March, 4),
			wantEnd:   day(2017, time.March, 4),
		},
		{
			name:      "italian laycan",
			expr:      "29-01 DIC",
			anchor:    day(2018, time.November, 26),
			opts:      []Option{WithLocales("it")},
			wantStart: day(2018, time.November, 29),
			wantEnd:   day(2018, time.December, 1),
		},
		{
			name:      "spanish month name",
			expr:      "15 SEPTIEMBRE",
			anchor:    day(2018, time.November, 26),
			opts:      []Option{WithLocales("es")},
			wantStart: day(2018, time.September, 15),
			wantEnd:   day(2018, time.September, 15),
		},
		{
			name:      "spanish vague day",
			expr:      "END SEPTIEMBRE",
			anchor:    day(2018, time.November, 26),
			opts:      []Option{WithLocales("es")},
			wantStart: day(2018, time.September, 24),
			wantEnd:   day(2018, time.September, 30),
		},
		{
			name:      "portuguese month name",
			expr:      "3-5 DEZEMBRO",
			anchor:    day(2018, time.November, 26),
			opts:      []Option{WithLocales("pt")},
			wantStart: day(2018, time.December, 3),
			wantEnd:   day(2018, time.December, 5),
		},
		{
			name:      "day range with year ignores anchor year",
			expr:      "3-5 NOV 2017",
			anchor:    day(2018, time.November, 26),
			wantStart: day(2017, time.November, 3),
			wantEnd:   day(2017, time.November, 5),
		},
		{
			name:      "day range with year rolls into previous month",
			expr:      "30-01 JAN 2019",
			anchor:    day(2018, time.June, 1),
			wantStart: day(2018, time.December, 30),
			wantEnd:   day(2019, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.expr, tt.anchor, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start, "start")
			assert.Equal(t, tt.wantEnd, got.End, "end")
			assert.False(t, got.End.Before(got.Start), "end before start")
		})
	}
}

func TestResolveUnparseable(t *testing.T) {
	for _, expr := range []string{"PPT ON", "", "TBN", "32 NOV", "dnr"} {
		t.Run(expr, func(t *testing.T) {
			got, err := Resolve(expr, day(2018, time.November, 26))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparseable))
			assert.True(t, got.IsZero())

			start, end := got.ISO()
			assert.Empty(t, start)
			assert.Empty(t, end)
		})
	}
}

func TestResolveNoAnchor(t *testing.T) {
	_, err := Resolve("6-Nov", time.Time{})
	assert.ErrorIs(t, err, ErrNoAnchor)
}

func TestResolveAnchorTimeOfDayIgnored(t *testing.T) {
	anchor := time.Date(2018, time.November, 5, 23, 30, 0, 0, time.FixedZone("X", 5*3600))
	got, err := Resolve("6-Nov", anchor)
	require.NoError(t, err)
	assert.Equal(t, day(2018, time.November, 6), got.Start)
}

func TestDayRangeWithoutRolloverStaysInMonth(t *testing.T) {
	anchor := day(2019, time.June, 15)
	r := New()
	for month := time.January; month <= time.December; month++ {
		for start := 1; start <= 28; start++ {
			for end := start; end <= 28; end++ {
				got, err := r.ResolveExpression(DayRange{StartDay: start, EndDay: end, Month: month}, anchor)
				require.NoError(t, err)
				require.Equal(t, month, got.Start.Month())
				require.Equal(t, month, got.End.Month())
				require.False(t, got.Start.After(got.End))
			}
		}
	}
}

func TestCrossMonthDecemberToJanuary(t *testing.T) {
	r := New()
	for _, anchor := range []time.Time{
		day(2018, time.November, 20),
		day(2018, time.December, 20),
		day(2019, time.January, 2),
		day(2019, time.June, 1),
	} {
		got, err := r.ResolveExpression(CrossMonthRange{StartDay: 27, StartMonth: time.December, EndDay: 4, EndMonth: time.January}, anchor)
		require.NoError(t, err)
		assert.Equal(t, got.Start.Year()+1, got.End.Year(), "anchor %s", anchor.Format(time.DateOnly))
	}
}

func TestISORoundTrip(t *testing.T) {
	got, err := Resolve("29-01/12", day(2018, time.November, 26))
	require.NoError(t, err)

	start, end := got.ISO()
	assert.Equal(t, "2018-11-29T00:00:00", start)
	assert.Equal(t, "2018-12-01T00:00:00", end)

	parsedStart, err := ParseISO(start)
	require.NoError(t, err)
	parsedEnd, err := ParseISO(end)
	require.NoError(t, err)
	assert.Equal(t, got, Range{Start: parsedStart, End: parsedEnd})
}

func TestParseRollover(t *testing.T) {
	tests := []struct {
		input   string
		want    Rollover
		wantErr bool
	}{
		{"", RolloverMonthEnd, false},
		{"month_end", RolloverMonthEnd, false},
		{"Shift_Month", RolloverShiftMonth, false},
		{"forward", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRollover(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownRollover)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParseRollover(t, got.String()))
	}
}

func mustParseRollover(t *testing.T, s string) Rollover {
	t.Helper()
	r, err := ParseRollover(s)
	require.NoError(t, err)
	return r
}

func TestResolverCache(t *testing.T) {
	r := New(WithCache(time.Minute))
	anchor := day(2018, time.November, 26)

	var wg sync.WaitGroup
	results := make([]Range, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Resolve("29-01/12", anchor)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, day(2018, time.November, 29), got.Start)
	}

	_, err := r.Resolve("PPT ON", anchor)
	assert.ErrorIs(t, err, ErrUnparseable)
	_, err = r.Resolve("ppt on", anchor)
	assert.ErrorIs(t, err, ErrUnparseable, "cached errors are returned again")
}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2018-11-26", day(2018, time.November, 26), false},
		{"2018-11-26T00:00:00", day(2018, time.November, 26), false},
		{"2018-11-26T14:02:00Z", day(2018, time.November, 26), false},
		{"26 Nov 2018", day(2018, time.November, 26), false},
		{"26 NOV 2018", day(2018, time.November, 26), false},
		{"26 November 2018", day(2018, time.November, 26), false},
		{"November 26, 2018", day(2018, time.November, 26), false},
		{"26/11/2018", day(2018, time.November, 26), false},
		{"26.11.2018", day(2018, time.November, 26), false},
		{"", time.Time{}, true},
		{"next week", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnchor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoAnchor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
