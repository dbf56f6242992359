// Package astro computes prayer schedules from solar geometry.
//
// Solar events come from github.com/nathan-osman/go-sunrise: sunrise and
// sunset at the standard refraction-corrected horizon, and the times at which
// the sun crosses an arbitrary elevation. Dhuhr is the apparent solar noon,
// the midpoint of sunrise and sunset. Asr is the evening crossing of the
// altitude at which a shadow reaches its noon length plus k object heights.
package astro

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

// Calculator computes prayer schedules for one location, offset and method.
// It implements prayer.Provider.
type Calculator struct {
	location prayer.Location
	zone     *time.Location
	method   Method
	asr      AsrMethod
}

var _ prayer.Provider = (*Calculator)(nil)

// NewCalculator creates a Calculator. Output times are expressed in zone.
func NewCalculator(location prayer.Location, zone *time.Location, method Method, asr AsrMethod) *Calculator {
	if zone == nil {
		zone = time.UTC
	}
	return &Calculator{
		location: location,
		zone:     zone,
		method:   method,
		asr:      asr,
	}
}

// Location returns the calculator's coordinates.
func (c *Calculator) Location() prayer.Location {
	return c.location
}

// Schedule computes the prayer times for the calendar date of date.
func (c *Calculator) Schedule(ctx context.Context, date time.Time) (*prayer.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateLocation(c.location); err != nil {
		return nil, err
	}

	var (
		lat    = c.location.Latitude
		lon    = c.location.Longitude
		params = c.method.Params()
		day    = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.zone)
	)
	y, m, d := day.Date()

	rise, set := sunrise.SunriseSunset(lat, lon, y, m, d)
	if rise.IsZero() || set.IsZero() {
		return nil, fmt.Errorf("%w: the sun does not rise or set at %s on %s",
			prayer.ErrComputation, c.location, day.Format(time.DateOnly))
	}
	noon := rise.Add(set.Sub(rise) / 2)

	fajr, _, err := c.elevation(-params.FajrAngle, day)
	if err != nil {
		return nil, err
	}

	maghrib := set
	if params.MaghribAngle > 0 {
		if _, maghrib, err = c.elevation(-params.MaghribAngle, day); err != nil {
			return nil, err
		}
	}

	var isha time.Time
	if params.IshaInterval > 0 {
		interval := params.IshaInterval
		if params.RamadanIshaInterval > 0 && ToHijri(day).Month == Ramadan {
			interval = params.RamadanIshaInterval
		}
		isha = maghrib.Add(interval)
	} else if _, isha, err = c.elevation(-params.IshaAngle, day); err != nil {
		return nil, err
	}

	asrAltitude := AsrAltitude(lat, Declination(lon, day), c.asr.ShadowFactor())
	_, asr, err := c.elevation(asrAltitude, day)
	if err != nil {
		return nil, err
	}

	sched := &prayer.Schedule{
		Date:     day,
		Location: c.location,
		Prayers: []prayer.Prayer{
			{Name: prayer.Fajr, Time: fajr.In(c.zone)},
			{Name: prayer.Sunrise, Time: rise.In(c.zone)},
			{Name: prayer.Dhuhr, Time: noon.In(c.zone)},
			{Name: prayer.Asr, Time: asr.In(c.zone)},
			{Name: prayer.Maghrib, Time: maghrib.In(c.zone)},
			{Name: prayer.Isha, Time: isha.In(c.zone)},
		},
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "computed schedule",
		"date", day.Format(time.DateOnly),
		"method", c.method.String(),
		"asr", c.asr.String(),
		"fajr", sched.Prayers[0].Time.Format(time.TimeOnly),
		"isha", sched.Prayers[5].Time.Format(time.TimeOnly))

	return sched, nil
}

// elevation returns the morning and evening times at which the sun crosses
// the given elevation in degrees.
func (c *Calculator) elevation(degrees float64, day time.Time) (time.Time, time.Time, error) {
	morning, evening := sunrise.TimeOfElevation(
		c.location.Latitude, c.location.Longitude, degrees, day.Year(), day.Month(), day.Day())
	if morning.IsZero() || evening.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: the sun does not reach %.2f° at %s on %s",
			prayer.ErrComputation, degrees, c.location, day.Format(time.DateOnly))
	}
	return morning, evening, nil
}

// ValidateLocation rejects coordinates outside the valid ranges.
func ValidateLocation(loc prayer.Location) error {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", prayer.ErrComputation, loc.Latitude)
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", prayer.ErrComputation, loc.Longitude)
	}
	return nil
}

// Declination returns the sun's declination in degrees at solar noon on the
// calendar date of day for the given longitude.
func Declination(longitude float64, day time.Time) float64 {
	var (
		d                 = sunrise.MeanSolarNoon(longitude, day.Year(), day.Month(), day.Day())
		solarAnomaly      = sunrise.SolarMeanAnomaly(d)
		equationOfCenter  = sunrise.EquationOfCenter(solarAnomaly)
		eclipticLongitude = sunrise.EclipticLongitude(solarAnomaly, equationOfCenter, d)
	)
	return sunrise.Declination(eclipticLongitude)
}

// AsrAltitude returns the solar altitude in degrees at which an object's
// shadow equals shadowFactor times its height plus its noon shadow.
func AsrAltitude(latitude, declination, shadowFactor float64) float64 {
	zenith := math.Abs(latitude-declination) * math.Pi / 180
	return math.Atan(1/(shadowFactor+math.Tan(zenith))) * 180 / math.Pi
}
