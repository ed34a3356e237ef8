package laycan

import (
	"strconv"
	"strings"
	"time"
)

// englishMonths covers full names and the three/four letter abbreviations
// seen in fixture reports ("SEP", "SEPT").
var englishMonths = map[string]time.Month{
	"JAN": time.January, "JANUARY": time.January,
	"FEB": time.February, "FEBRUARY": time.February,
	"MAR": time.March, "MARCH": time.March,
	"APR": time.April, "APRIL": time.April,
	"MAY": time.May,
	"JUN": time.June, "JUNE": time.June,
	"JUL": time.July, "JULY": time.July,
	"AUG": time.August, "AUGUST": time.August,
	"SEP": time.September, "SEPT": time.September, "SEPTEMBER": time.September,
	"OCT": time.October, "OCTOBER": time.October,
	"NOV": time.November, "NOVEMBER": time.November,
	"DEC": time.December, "DECEMBER": time.December,
}

// localizedMonths are consulted before the English table, and only for the
// locales a resolver was configured with.
var localizedMonths = map[string]map[string]time.Month{
	"it": {
		"GEN": time.January, "GENNAIO": time.January,
		"FEB": time.February, "FEBBRAIO": time.February,
		"MAR": time.March, "MARZO": time.March,
		"APR": time.April, "APRILE": time.April,
		"MAG": time.May, "MAGGIO": time.May,
		"GIU": time.June, "GIUGNO": time.June,
		"LUG": time.July, "LUGLIO": time.July,
		"AGO": time.August, "AGOSTO": time.August,
		"SET": time.September, "SETT": time.September, "SETTEMBRE": time.September,
		"OTT": time.October, "OTTOBRE": time.October,
		"NOV": time.November, "NOVEMBRE": time.November,
		"DIC": time.December, "DICEMBRE": time.December,
	},
	"es": {
		"ENE": time.January, "ENERO": time.January,
		"FEB": time.February, "FEBRERO": time.February,
		"MAR": time.March, "MARZO": time.March,
		"ABR": time.April, "ABRIL": time.April,
		"MAY": time.May, "MAYO": time.May,
		"JUN": time.June, "JUNIO": time.June,
		"JUL": time.July, "JULIO": time.July,
		"AGO": time.August, "AGOSTO": time.August,
		"SEP": time.September, "SET": time.September, "SEPTIEMBRE": time.September,
		"OCT": time.October, "OCTUBRE": time.October,
		"NOV": time.November, "NOVIEMBRE": time.November,
		"DIC": time.December, "DICIEMBRE": time.December,
	},
	"pt": {
		"JAN": time.January, "JANEIRO": time.January,
		"FEV": time.February, "FEVEREIRO": time.February,
		"MAR": time.March, "MARCO": time.March, "MARÇO": time.March,
		"ABR": time.April, "ABRIL": time.April,
		"MAI": time.May, "MAIO": time.May,
		"JUN": time.June, "JUNHO": time.June,
		"JUL": time.July, "JULHO": time.July,
		"AGO": time.August, "AGOSTO": time.August,
		"SET": time.September, "SETEMBRO": time.September,
		"OUT": time.October, "OUTUBRO": time.October,
		"NOV": time.November, "NOVEMBRO": time.November,
		"DEZ": time.December, "DEZEMBRO": time.December,
	},
}

// Locales returns the localized month tables available to WithLocales.
func Locales() []string {
	return []string{"it", "es", "pt"}
}

// lookupMonth resolves a month token. Numeric tokens must be 1-12; named
// tokens go through the localized tables in order, then English.
func lookupMonth(token string, locales []string) (time.Month, bool) {
	token = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(token)), ".")
	if token == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}

	for _, loc := range locales {
		if table, ok := localizedMonths[loc]; ok {
			if m, ok := table[token]; ok {
				return m, true
			}
		}
	}

	m, ok := englishMonths[token]
	return m, ok
}

// DaysIn returns the number of days in the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// previousMonth steps back one calendar month.
func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// date builds a UTC date, clamping days past the end of the month to the
// month's last day. A nonexistent day such as 31/02 resolves to 28/02 (or
// 29/02); it never moves into the following or previous month.
func date(year int, month time.Month, day int) time.Time {
	if n := DaysIn(year, month); day > n {
		day = n
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
