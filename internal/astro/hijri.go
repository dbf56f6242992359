package astro

import (
	"fmt"
	"time"
)

// Ramadan is the ninth month of the Hijri calendar.
const Ramadan = 9

var hijriMonthNames = [...]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani", "Jumada al-Ula", "Jumada al-Akhirah",
	"Rajab", "Shaban", "Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// HijriDate is a date in the tabular (arithmetic) Islamic calendar.
// It can differ by a day from sighting-based calendars.
type HijriDate struct {
	Year  int
	Month int
	Day   int
}

// MonthName returns the transliterated month name.
func (h HijriDate) MonthName() string {
	if h.Month < 1 || h.Month > 12 {
		return ""
	}
	return hijriMonthNames[h.Month-1]
}

// String formats the date as "DD MonthName YYYY AH".
func (h HijriDate) String() string {
	return fmt.Sprintf("%d %s %d AH", h.Day, h.MonthName(), h.Year)
}

// ToHijri converts the calendar date of t to the tabular Islamic calendar.
func ToHijri(t time.Time) HijriDate {
	y, m, d := t.Date()
	l := julianDayNumber(y, int(m), d) - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30
	return HijriDate{Year: year, Month: month, Day: day}
}

// julianDayNumber returns the Julian Day Number of a Gregorian date.
func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
