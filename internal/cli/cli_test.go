package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/display"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

var testZone = prayer.Offset(2).Zone()

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// setup isolates the config directory and disables colors.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	prev := display.Enabled()
	display.SetEnabled(false)
	t.Cleanup(func() { display.SetEnabled(prev) })

	return dir
}

// execute runs the root command in-process at the given instant.
func execute(t *testing.T, now time.Time, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd("test", fixedClock{now})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// cairoDay is the default location's schedule for 2026-03-21.
func cairoDay(t *testing.T) *prayer.Schedule {
	t.Helper()
	return scheduleAt(t, 30, 31, time.Date(2026, 3, 21, 0, 0, 0, 0, testZone))
}

func scheduleAt(t *testing.T, lat, long float64, date time.Time) *prayer.Schedule {
	t.Helper()
	calc := astro.NewCalculator(prayer.Location{Latitude: lat, Longitude: long}, testZone, astro.MethodEgypt, astro.AsrStandard)
	sched, err := calc.Schedule(context.Background(), date)
	require.NoError(t, err)
	return sched
}

func timeOf(t *testing.T, sched *prayer.Schedule, name prayer.Name) time.Time {
	t.Helper()
	p, ok := sched.Get(name)
	require.True(t, ok)
	return p.Time
}

func TestReport_NearestElapsed(t *testing.T) {
	setup(t)
	maghrib := timeOf(t, cairoDay(t), prayer.Maghrib)

	out, err := execute(t, maghrib.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "maghrib, 10 minutes ago\n", out)
}

func TestReport_NearestFallsBackToNext(t *testing.T) {
	setup(t)
	sched := cairoDay(t)
	asr := timeOf(t, sched, prayer.Asr)
	maghrib := timeOf(t, sched, prayer.Maghrib)

	now := asr.Add(time.Hour)
	out, err := execute(t, now)
	require.NoError(t, err)
	assert.Equal(t, "maghrib, "+prayer.FormatDelta(maghrib.Sub(now))+"\n", out)
}

func TestReport_Next(t *testing.T) {
	setup(t)
	sched := cairoDay(t)
	asr := timeOf(t, sched, prayer.Asr)
	maghrib := timeOf(t, sched, prayer.Maghrib)

	now := asr.Add(time.Minute)

	out, err := execute(t, now)
	require.NoError(t, err)
	assert.Equal(t, "asr, 1 minute ago\n", out)

	out, err = execute(t, now, "next")
	require.NoError(t, err)
	assert.Equal(t, "maghrib, "+prayer.FormatDelta(maghrib.Sub(now))+"\n", out)
}

func TestReport_Named(t *testing.T) {
	setup(t)
	sched := cairoDay(t)
	dhuhr := timeOf(t, sched, prayer.Dhuhr)
	sunrise := timeOf(t, sched, prayer.Sunrise)
	now := dhuhr.Add(-3 * time.Hour)

	out, err := execute(t, now, "dhuhr")
	require.NoError(t, err)
	assert.Equal(t, "dhuhr "+dhuhr.Format("15:04")+"\n", out)

	out, err = execute(t, now, "SUNRISE")
	require.NoError(t, err)
	assert.Equal(t, "sunrise "+sunrise.Format("15:04")+"\n", out)

	out, err = execute(t, now, "dhuhr", "--time-format", "12h")
	require.NoError(t, err)
	assert.Equal(t, "dhuhr "+dhuhr.Format("3:04 PM")+"\n", out)
}

func TestReport_Formats(t *testing.T) {
	setup(t)
	maghrib := timeOf(t, cairoDay(t), prayer.Maghrib)
	now := maghrib.Add(10 * time.Minute)

	tests := []struct {
		format string
		want   string
	}{
		{"signed", prayer.FormatSignedDelta(-10 * time.Minute)},
		{"time", maghrib.Format("15:04")},
		{"name", "Maghrib"},
		{"relative", "maghrib 10 minutes ago"},
		{"{{.ShortName}} {{.Remaining}}", "M 10 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, now, "--format", tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestReport_JSON(t *testing.T) {
	setup(t)
	maghrib := timeOf(t, cairoDay(t), prayer.Maghrib)

	out, err := execute(t, maghrib.Add(10*time.Minute), "--json")
	require.NoError(t, err)

	var got selectionJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "maghrib", got.Prayer)
	assert.Equal(t, maghrib.Format("15:04"), got.Time)
	assert.Equal(t, int64(-600), got.DeltaSeconds)
	assert.Equal(t, "maghrib, 10 minutes ago", got.Human)
	assert.True(t, got.Elapsed)
	assert.Equal(t, "2026-03-21", got.Date)
	assert.Equal(t, locationJSON{Latitude: 30, Longitude: 31}, got.Location)
	assert.Equal(t, "UTC+2", got.Offset)
}

func TestReport_LocationFlags(t *testing.T) {
	setup(t)
	date := time.Date(2026, 3, 21, 0, 0, 0, 0, testZone)
	jeddah := scheduleAt(t, 21.5, 39.2, date)
	fajr := timeOf(t, jeddah, prayer.Fajr)

	out, err := execute(t, date.Add(time.Hour), "fajr", "--lat", "21.5", "--long", "39.2")
	require.NoError(t, err)
	assert.Equal(t, "fajr "+fajr.Format("15:04")+"\n", out)
}

func TestReport_EnvironmentAndFlagPriority(t *testing.T) {
	setup(t)
	now := time.Date(2026, 3, 21, 10, 0, 0, 0, testZone)
	t.Setenv("NEXT_SALAH_FORMAT", "name")

	out, err := execute(t, now, "next")
	require.NoError(t, err)
	assert.Equal(t, "Dhuhr\n", out)

	out, err = execute(t, now, "next", "--format", "time")
	require.NoError(t, err)
	assert.Equal(t, timeOf(t, cairoDay(t), prayer.Dhuhr).Format("15:04")+"\n", out)
}

func TestReport_EnvFile(t *testing.T) {
	setup(t)
	t.Cleanup(func() { os.Unsetenv("NEXT_SALAH_FORMAT") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEXT_SALAH_FORMAT=name\n"), 0o600))

	out, err := execute(t, time.Date(2026, 3, 21, 10, 0, 0, 0, testZone), "next", "--env-file", path)
	require.NoError(t, err)
	assert.Equal(t, "Dhuhr\n", out)
}

func TestReport_Errors(t *testing.T) {
	setup(t)
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, testZone)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown prayer", []string{"fajrr"}, ExitInvalidArgument},
		{"too many args", []string{"fajr", "asr"}, ExitInvalidArgument},
		{"malformed latitude", []string{"--lat", "abc"}, ExitInvalidArgument},
		{"unknown flag", []string{"--nope"}, ExitInvalidArgument},
		{"offset out of range", []string{"--timedelta", "20"}, ExitInvalidArgument},
		{"unknown method", []string{"--method", "nope"}, ExitInvalidArgument},
		{"bad format", []string{"--format", "verbose"}, ExitInvalidArgument},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, ExitInvalidArgument},
		{"latitude out of range", []string{"--lat", "95"}, ExitComputation},
		{"midnight sun", []string{"--lat", "80", "--long", "15"}, ExitComputation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, now, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, ExitCode(err))
		})
	}
}

func TestVersionFlag(t *testing.T) {
	setup(t)

	out, err := execute(t, time.Now(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "next-salah version test\n", out)
}

func TestMethodsSubcommand(t *testing.T) {
	setup(t)

	out, err := execute(t, time.Now(), "methods")
	require.NoError(t, err)

	assert.Contains(t, out, "Supported calculation methods:")
	for _, info := range astro.Methods {
		assert.Contains(t, out, info.Key)
		assert.Contains(t, out, info.Name)
	}
	assert.Contains(t, out, "19.5°")
	assert.Contains(t, out, "+90 min (+120 in Ramadan)")
	assert.Contains(t, out, "(default: egypt)")
}

func TestConfigCommands(t *testing.T) {
	dir := setup(t)
	now := time.Date(2026, 3, 21, 10, 0, 0, 0, testZone)
	path := filepath.Join(dir, "next-salah", "config.yaml")

	out, err := execute(t, now, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = execute(t, now, "config", "set", "format", "name")
	require.NoError(t, err)
	assert.Equal(t, "Set format = name\n", out)
	assert.FileExists(t, path)

	out, err = execute(t, now, "next")
	require.NoError(t, err)
	assert.Equal(t, "Dhuhr\n", out)

	out, err = execute(t, now, "config")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "  format         name\n")
	assert.Contains(t, out, "  method         egypt (Egyptian General Authority of Survey)\n")

	out, err = execute(t, now, "config", "reset")
	require.NoError(t, err)
	assert.Equal(t, "Configuration reset to defaults.\n", out)
	assert.NoFileExists(t, path)
}

func TestConfigSet_Invalid(t *testing.T) {
	setup(t)
	now := time.Now()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "city", "Cairo"}},
		{"latitude out of range", []string{"config", "set", "latitude", "100"}},
		{"unknown method", []string{"config", "set", "method", "nope"}},
		{"missing value", []string{"config", "set", "latitude"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, now, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArgument, ExitCode(err))
		})
	}
}

func TestConfigSet_DoesNotPersistEnvironment(t *testing.T) {
	dir := setup(t)
	t.Setenv("NEXT_SALAH_METHOD", "isna")

	_, err := execute(t, time.Now(), "config", "set", "asr", "hanafi")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "next-salah", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "asr: hanafi")
	assert.Contains(t, string(data), "method: egypt")
}

func TestConfigReset_RecoversFromInvalidFile(t *testing.T) {
	dir := setup(t)
	now := time.Date(2026, 3, 21, 10, 0, 0, 0, testZone)

	path := filepath.Join(dir, "next-salah", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("method: nope\n"), 0o644))

	_, err := execute(t, now)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgument, ExitCode(err))

	_, err = execute(t, now, "config", "reset")
	require.NoError(t, err)

	_, err = execute(t, now)
	require.NoError(t, err)
}

func TestConfigFlag(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")

	_, err := execute(t, time.Now(), "config", "set", "format", "name", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	out, err := execute(t, time.Date(2026, 3, 21, 10, 0, 0, 0, testZone), "next", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Dhuhr\n", out)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"invalid argument", fmt.Errorf("%w: bad", prayer.ErrInvalidArgument), ExitInvalidArgument},
		{"computation", fmt.Errorf("%w: polar", prayer.ErrComputation), ExitComputation},
		{"selection", fmt.Errorf("%w: empty", prayer.ErrSelection), ExitSelection},
		{"other", errors.New("disk full"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "error: invalid argument: bad",
		ErrorMessage(fmt.Errorf("%w: bad", prayer.ErrInvalidArgument)))
	assert.Equal(t, "unexpected error: selection failed: empty",
		ErrorMessage(fmt.Errorf("%w: empty", prayer.ErrSelection)))
}

func TestConfigShow_BadConfigFile(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("latitude: [\n"), 0o644))

	for _, path := range []string{filepath.Join(dir, "missing.yaml"), invalid} {
		_, err := execute(t, time.Now(), "config", "--config", path)
		require.Error(t, err, path)
		assert.Equal(t, ExitInvalidArgument, ExitCode(err), path)

		_, err = execute(t, time.Now(), "--config", path)
		require.Error(t, err, path)
		assert.Equal(t, ExitInvalidArgument, ExitCode(err), path)
	}
}

func TestConfigSet_CreatesExplicitFile(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "fresh.yaml")
	require.NoFileExists(t, path)

	out, err := execute(t, time.Now(), "config", "set", "latitude", "21.4", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Set latitude = 21.4\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "latitude: 21.4")
}
