package dateutil

import "time"

// BeginningOfDay truncates t to midnight in UTC.
func BeginningOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NextDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1)
}

// Date formats the UTC calendar day of t, e.g. 2024-05-01.
func Date(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func NextHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour).Add(time.Hour)
}
