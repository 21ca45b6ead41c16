package util

import "time"

// MonthBounds returns the first instant of the month and the first instant
// of the following month, both UTC
func MonthBounds(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
