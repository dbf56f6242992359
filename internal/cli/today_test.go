package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

func TestToday_JSONStates(t *testing.T) {
	setup(t)
	sched := cairoDay(t)
	asr := timeOf(t, sched, prayer.Asr)
	maghrib := timeOf(t, sched, prayer.Maghrib)
	now := asr.Add(time.Minute)

	out, err := execute(t, now, "today", "--json")
	require.NoError(t, err)

	var got todayJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "2026-03-21", got.Date)
	assert.Equal(t, astro.ToHijri(sched.Date).String(), got.Hijri)
	assert.Equal(t, "egypt", got.Method)
	assert.Equal(t, "standard", got.Asr)
	assert.Equal(t, "asr", got.Current)

	states := make(map[string]string, len(got.Prayers))
	for _, p := range got.Prayers {
		states[p.Name] = p.State
	}
	assert.Equal(t, map[string]string{
		"fajr":    "passed",
		"sunrise": "passed",
		"dhuhr":   "passed",
		"asr":     "active",
		"maghrib": "next",
		"isha":    "upcoming",
	}, states)

	assert.Equal(t, todayJSONNext{
		Prayer:    "maghrib",
		Date:      "2026-03-21",
		Time:      maghrib.Format("15:04"),
		Remaining: prayer.FormatDuration(maghrib.Sub(now)),
	}, got.Next)
}

func TestToday_JSONNoActivePrayer(t *testing.T) {
	setup(t)
	dhuhr := timeOf(t, cairoDay(t), prayer.Dhuhr)

	out, err := execute(t, dhuhr.Add(-time.Hour), "today", "--json")
	require.NoError(t, err)

	var got todayJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Current)
	assert.Equal(t, "dhuhr", got.Next.Prayer)
}

func TestToday_Rich(t *testing.T) {
	setup(t)
	asr := timeOf(t, cairoDay(t), prayer.Asr)

	out, err := execute(t, asr.Add(time.Minute), "today")
	require.NoError(t, err)

	assert.Contains(t, out, "Prayer Times")
	assert.Contains(t, out, "30.0000, 31.0000 (UTC+2)")
	assert.Contains(t, out, "Sat 21 Mar 2026")
	assert.Contains(t, out, "Asr")
	assert.Contains(t, out, asr.Format("15:04"))
	assert.Contains(t, out, "<- now, 1 minute ago")
	assert.Contains(t, out, "<- next, ")
	assert.NotContains(t, out, "tomorrow")
}

func TestToday_NextIsTomorrow(t *testing.T) {
	setup(t)
	isha := timeOf(t, cairoDay(t), prayer.Isha)
	tomorrow := scheduleAt(t, 30, 31, time.Date(2026, 3, 22, 0, 0, 0, 0, testZone))
	fajr := timeOf(t, tomorrow, prayer.Fajr)

	now := isha.Add(time.Hour)

	out, err := execute(t, now, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Next: Fajr tomorrow at "+fajr.Format("15:04"))

	out, err = execute(t, now, "today", "--json")
	require.NoError(t, err)

	var got todayJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fajr", got.Next.Prayer)
	assert.Equal(t, "2026-03-22", got.Next.Date)
	for _, p := range got.Prayers {
		assert.Equal(t, "passed", p.State, p.Name)
	}
}

func TestToday_SunriseOption(t *testing.T) {
	setup(t)
	sunrise := timeOf(t, cairoDay(t), prayer.Sunrise)
	now := sunrise.Add(-10 * time.Minute)

	out, err := execute(t, now, "today", "--json")
	require.NoError(t, err)
	var got todayJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dhuhr", got.Next.Prayer)

	out, err = execute(t, now, "today", "--json", "--sunrise")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "sunrise", got.Next.Prayer)
}

func TestToday_RejectsArgs(t *testing.T) {
	setup(t)

	_, err := execute(t, time.Now(), "today", "extra")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgument, ExitCode(err))
}

func TestToday_AtPrayerTime(t *testing.T) {
	setup(t)
	asr := timeOf(t, cairoDay(t), prayer.Asr)

	out, err := execute(t, asr, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "<- now\n")
	assert.NotContains(t, out, "now, now")
}

func TestMarker(t *testing.T) {
	now := time.Date(2026, 3, 21, 15, 0, 0, 0, testZone)

	assert.Equal(t, "<- now", marker("now", now, now))
	assert.Equal(t, "<- now", marker("now", now.Add(-500*time.Millisecond), now))
	assert.Equal(t, "<- now, 10 minutes ago", marker("now", now.Add(-10*time.Minute), now))
	assert.Equal(t, "<- next, 2 hours from now", marker("next", now.Add(2*time.Hour), now))
}
