package calendar

import "time"

// NthWeekday returns the nth occurrence of weekday in the given month:
// the first occurrence is located from the 1st of the month, then 7*(n-1)
// days are added.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// LastWeekday returns the last occurrence of weekday in the given month,
// stepping backward from the month's final day.
func LastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// adjustWeekendHoliday shifts a fixed-date holiday off the weekend: Saturday
// and Sunday both move forward to Monday. Shifting a Saturday holiday
// forward (instead of back to Friday, the usual exchange convention) matches
// the behavior this service has always had; see DESIGN.md before changing it.
func adjustWeekendHoliday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// easter computes the Gregorian Easter Sunday for a year using the
// Meeus/Jones/Butcher congruence algorithm.
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// GoodFriday is the Friday two days before Easter Sunday.
func GoodFriday(year int) time.Time {
	return easter(year).AddDate(0, 0, -2)
}

// isUSMarketHoliday tests a date against the nine annual US exchange
// observances: New Year's Day, MLK Day, Presidents' Day, Good Friday,
// Memorial Day, Independence Day, Labor Day, Thanksgiving and Christmas.
func isUSMarketHoliday(d time.Time) bool {
	year := d.Year()
	day := func(t time.Time) bool { return sameDate(d, t) }

	switch {
	case day(adjustWeekendHoliday(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))):
		return true
	case day(NthWeekday(year, time.January, time.Monday, 3)):
		return true
	case day(NthWeekday(year, time.February, time.Monday, 3)):
		return true
	case day(GoodFriday(year)):
		return true
	case day(LastWeekday(year, time.May, time.Monday)):
		return true
	case day(adjustWeekendHoliday(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC))):
		return true
	case day(NthWeekday(year, time.September, time.Monday, 1)):
		return true
	case day(NthWeekday(year, time.November, time.Thursday, 4)):
		return true
	case day(adjustWeekendHoliday(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))):
		return true
	}
	return false
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
