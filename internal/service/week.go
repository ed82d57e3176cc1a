package service

import "time"

// WeekBounds returns the week containing now, Sunday 00:00:00.000 through
// Saturday 23:59:59.999 in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	start := time.Date(year, month, day-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// DayBounds returns the calendar day containing now.
func DayBounds(now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}
