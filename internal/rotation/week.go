package rotation

import "time"

// WeekStart returns midnight of the Sunday that begins t's week, in t's
// location. Weeks run Sunday through Saturday.
func WeekStart(t time.Time) time.Time {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekNumber computes the YYYYWW integer that keys one rotation cycle, e.g.
// 202502 for the second week of 2025. The week-of-year count starts at 1 on
// January 1 and is anchored to the Sunday that starts the week, so a week
// spanning New Year belongs entirely to the old year.
func WeekNumber(t time.Time) int {
	ws := WeekStart(t)
	startOfYear := time.Date(ws.Year(), 1, 1, 0, 0, 0, 0, ws.Location())
	days := ws.YearDay() - 1
	week := (days + int(startOfYear.Weekday()) + 1 + 6) / 7
	return ws.Year()*100 + week
}
