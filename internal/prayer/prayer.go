package prayer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Name identifies one of the daily prayer times. The zero value is Fajr.
type Name int

// Prayer names in canonical daily order.
const (
	Fajr Name = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// AllNames lists every prayer name in chronological order.
var AllNames = []Name{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var nameStrings = [...]string{"fajr", "sunrise", "dhuhr", "asr", "maghrib", "isha"}

// ShortNames maps prayer names to single-character abbreviations.
var ShortNames = map[Name]string{
	Fajr:    "F",
	Sunrise: "S",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
}

// String returns the lower-case prayer name, e.g. "maghrib".
func (n Name) String() string {
	if n < Fajr || n > Isha {
		return fmt.Sprintf("Name(%d)", int(n))
	}
	return nameStrings[n]
}

// Title returns the capitalized prayer name, e.g. "Maghrib".
func (n Name) Title() string {
	s := n.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseName converts a case-insensitive prayer name into a Name.
func ParseName(s string) (Name, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, str := range nameStrings {
		if str == key {
			return Name(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown prayer %q; valid names: %s, next",
		ErrInvalidArgument, s, strings.Join(nameStrings[:], ", "))
}

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name Name
	Time time.Time
}

// Location is a point on Earth in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// String formats the location as "lat, long".
func (l Location) String() string {
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// Offset is a signed number of hours from UTC. Fractional values express
// half- and quarter-hour zones, e.g. 5.5 or -3.5.
type Offset float64

// Valid offsets span UTC-12 to UTC+14.
const (
	MinOffset Offset = -12
	MaxOffset Offset = 14
)

// Validate reports whether the offset names a real UTC offset.
func (o Offset) Validate() error {
	if math.IsNaN(float64(o)) || o < MinOffset || o > MaxOffset {
		return fmt.Errorf("%w: timedelta %v must be between %v and %v", ErrInvalidArgument, float64(o), float64(MinOffset), float64(MaxOffset))
	}
	return nil
}

// Seconds returns the offset in whole seconds east of UTC.
func (o Offset) Seconds() int {
	return int(math.Round(float64(o) * 3600))
}

// String formats the offset as "UTC+2" or "UTC-3:30".
func (o Offset) String() string {
	secs := o.Seconds()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m := secs/3600, (secs%3600)/60
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}

// Zone returns a fixed time zone for the offset.
func (o Offset) Zone() *time.Location {
	return time.FixedZone(o.String(), o.Seconds())
}

// Schedule holds one calendar day of prayer times for one location.
// Prayers are stored in canonical order, one entry per name.
type Schedule struct {
	// Date is midnight of the calendar day in the schedule's zone.
	Date     time.Time
	Location Location
	Prayers  []Prayer
}

// Get returns the prayer with the given name.
func (s *Schedule) Get(name Name) (Prayer, bool) {
	for _, p := range s.Prayers {
		if p.Name == name {
			return p, true
		}
	}
	return Prayer{}, false
}

// Candidates returns the prayers eligible for next/nearest selection.
// Sunrise is only included when includeSunrise is set.
func (s *Schedule) Candidates(includeSunrise bool) []Prayer {
	out := make([]Prayer, 0, len(s.Prayers))
	for _, p := range s.Prayers {
		if p.Name == Sunrise && !includeSunrise {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Validate checks that the schedule has every prayer exactly once and that
// times increase strictly in canonical order.
func (s *Schedule) Validate() error {
	if len(s.Prayers) != len(AllNames) {
		return fmt.Errorf("%w: schedule for %s has %d entries, want %d",
			ErrComputation, s.Date.Format(time.DateOnly), len(s.Prayers), len(AllNames))
	}
	for i, p := range s.Prayers {
		if p.Name != AllNames[i] {
			return fmt.Errorf("%w: schedule entry %d is %s, want %s", ErrComputation, i, p.Name, AllNames[i])
		}
		if p.Time.IsZero() {
			return fmt.Errorf("%w: no %s time on %s", ErrComputation, p.Name, s.Date.Format(time.DateOnly))
		}
		if i > 0 && !p.Time.After(s.Prayers[i-1].Time) {
			return fmt.Errorf("%w: %s (%s) is not after %s (%s)", ErrComputation,
				p.Name, p.Time.Format(time.TimeOnly), s.Prayers[i-1].Name, s.Prayers[i-1].Time.Format(time.TimeOnly))
		}
	}
	return nil
}

// TimeRemaining returns the duration until the given prayer time.
// It is negative once the prayer time has passed.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// Day returns midnight of now's calendar date in now's location.
func Day(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current wall-clock time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }
