package live

import "time"

// taipeiOffset is fixed; Taiwan has no daylight saving.
const taipeiOffset = 8 * time.Hour

// Taipei is the fixed UTC+8 zone used for report timestamps.
var Taipei = time.FixedZone("Asia/Taipei", int(taipeiOffset/time.Second))

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalDate shifts t by +8h and truncates to the calendar date.
func LocalDate(t time.Time) Date {
	y, m, d := t.UTC().Add(taipeiOffset).Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.midnight().Format(time.DateOnly)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DayDifference returns whole days from a to b, negative when b precedes a.
func DayDifference(a, b Date) int {
	diff := b.midnight().Sub(a.midnight())
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) < 0 {
		days--
	}
	return int(days)
}

// DaysSince returns the Taiwan-local days between the message time and now, clamped at
// zero so a message stamped in the future reads as today.
func DaysSince(msg, now time.Time) int {
	n := DayDifference(LocalDate(msg), LocalDate(now))
	if n < 0 {
		return 0
	}
	return n
}
