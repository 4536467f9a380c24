package schedule

import (
	"time"

	"golang.org/x/text/language"
)

// canonicalWeekdays is the fixed Mon-Sun short-name sequence all rotations
// start from.
var canonicalWeekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Regions whose week starts on Sunday or Saturday; everything else defaults
// to Monday. Sourced from CLDR firstDay data.
var sundayFirstRegions = map[string]bool{
	"US": true, "CA": true, "JP": true, "KR": true, "TW": true, "HK": true,
	"IL": true, "IN": true, "BR": true, "MX": true, "CO": true, "PE": true,
	"PH": true, "TH": true, "ZA": true, "AU": true,
}

var saturdayFirstRegions = map[string]bool{
	"AE": true, "BH": true, "DZ": true, "EG": true, "IQ": true, "JO": true,
	"KW": true, "LY": true, "OM": true, "QA": true, "SA": true, "SD": true,
	"SY": true, "YE": true,
}

// FirstWeekday returns the locale's configured first day of week. Unparsable
// or region-less locales fall back to Monday.
func FirstWeekday(locale string) time.Weekday {
	tag, err := language.Parse(locale)
	if err != nil {
		return time.Monday
	}
	// Only trust regions spelled out in the tag; inferred likely regions
	// ("en" -> US) would silently flip the grid for bare language codes.
	region, conf := tag.Region()
	if conf != language.Exact {
		return time.Monday
	}
	switch {
	case sundayFirstRegions[region.String()]:
		return time.Sunday
	case saturdayFirstRegions[region.String()]:
		return time.Saturday
	default:
		return time.Monday
	}
}

// OrderedWeekdays returns the 7 short weekday names in display order for the
// locale, rotating the canonical Mon-Sun sequence to start at the locale's
// first day of week. Pure and deterministic for a given locale.
func OrderedWeekdays(locale string) [7]string {
	return rotateWeekdays(weekdayOffset(FirstWeekday(locale)))
}

// weekdayOffset maps a first weekday to its rotation offset within the
// canonical Monday-first sequence.
func weekdayOffset(first time.Weekday) int {
	// time.Weekday numbers Sunday as 0; canonical sequence starts Monday.
	return (int(first) + 6) % 7
}

func rotateWeekdays(offset int) [7]string {
	var out [7]string
	for i := 0; i < 7; i++ {
		out[i] = canonicalWeekdays[(offset+i)%7]
	}
	return out
}
