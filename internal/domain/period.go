package domain

import "time"

// DayRange widens [start, end] to whole calendar days in start's location
// and returns the half-open interval [from, to).
func DayRange(start, end time.Time) (from, to time.Time) {
	from = StartOfDay(start)
	to = StartOfDay(end.In(start.Location())).AddDate(0, 0, 1)
	return from, to
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
