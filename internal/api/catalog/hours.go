package catalog

import (
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// SeasonOf maps a date to its meteorological season.
func SeasonOf(date time.Time) types.Season {
	switch date.Month() {
	case time.March, time.April, time.May:
		return types.SeasonSpring
	case time.June, time.July, time.August:
		return types.SeasonSummer
	case time.September, time.October, time.November:
		return types.SeasonAutumn
	default:
		return types.SeasonWinter
	}
}

// OpenAt evaluates an opening-hours rule for a date and a minute of day.
// Seasonal availability and weekday exceptions take precedence over the
// regular interval; a weekday listed as closed always loses.
func OpenAt(h types.OpeningHours, date time.Time, minute int) bool {
	if len(h.Seasons) > 0 {
		season := SeasonOf(date)
		found := false
		for _, s := range h.Seasons {
			if s == season {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	weekday := date.Weekday()
	for _, wd := range h.ClosedWeekdays {
		if wd == weekday {
			return false
		}
	}

	open, close := h.OpenMinute, h.CloseMinute
	if ex, ok := h.Exceptions[weekday]; ok {
		if ex.Closed {
			return false
		}
		open, close = ex.OpenMinute, ex.CloseMinute
	}
	if open == 0 && close == 0 {
		// no declared interval means always open on an eligible day
		return true
	}
	return minute >= open && minute < close
}

// OpenForInterval reports whether the POI is open for the whole
// [startMinute, endMinute) interval on the given date.
func OpenForInterval(h types.OpeningHours, date time.Time, startMinute, endMinute int) bool {
	return OpenAt(h, date, startMinute) && OpenAt(h, date, endMinute-1)
}
