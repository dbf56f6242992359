package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/cache"
	"github.com/smokyabdulrahman/next-salah/internal/config"
	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

// flags holds the raw command-line values. They override the loaded config
// only when explicitly set.
type flags struct {
	latitude   float64
	longitude  float64
	timeDelta  float64
	sunrise    bool
	method     string
	asr        string
	format     string
	timeFormat string
	logLevel   string
	json       bool
	configPath string
	envFile    string
}

// app is the state shared by every command of one invocation.
type app struct {
	clock prayer.Clock
	flags flags

	// cfg and zone are resolved once in PersistentPreRunE.
	cfg  *config.Config
	zone *time.Location
}

// NewRootCmd creates the root command for the next-salah CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, prayer.SystemClock{})
}

func newRootCmd(version string, clock prayer.Clock) *cobra.Command {
	a := &app{clock: clock}

	rootCmd := &cobra.Command{
		Use:   "next-salah [PRAYER_NAME]",
		Short: "Show the next Islamic prayer time",
		Long: "Print the nearest, next or a named prayer time and how long remains until it\n" +
			"(or how long ago it was), computed locally from the sun's position.\n\n" +
			"PRAYER_NAME is one of fajr, sunrise, dhuhr, asr, maghrib, isha, or next.\n" +
			"Without it, a prayer from the last 20 minutes is shown as elapsed,\n" +
			"otherwise the next one.",
		Version:           version,
		Args:              prayerArg,
		PersistentPreRunE: a.resolveConfig,
		RunE:              a.runReport,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", prayer.ErrInvalidArgument, err)
	})

	d := config.Defaults()
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&a.flags.latitude, "lat", d.Latitude, "Latitude in degrees")
	pf.Float64Var(&a.flags.longitude, "long", d.Longitude, "Longitude in degrees")
	pf.Float64Var(&a.flags.timeDelta, "timedelta", d.TimeDelta, "UTC offset in hours, e.g. 2 or -3.5")
	pf.BoolVar(&a.flags.sunrise, "sunrise", d.Sunrise, "Consider sunrise (duha) when picking the nearest or next prayer")
	pf.StringVar(&a.flags.method, "method", d.Method, "Calculation method (see 'next-salah methods')")
	pf.StringVar(&a.flags.asr, "asr", d.Asr, "Asr method: standard or hanafi")
	pf.StringVar(&a.flags.timeFormat, "time-format", d.TimeFormat, "Time format: 12h or 24h")
	pf.StringVar(&a.flags.logLevel, "log-level", d.LogLevel, "Log level: debug, info, warn or error")
	pf.BoolVar(&a.flags.json, "json", false, "Output as JSON")
	pf.StringVar(&a.flags.configPath, "config", "", "Config file (default: ~/.config/next-salah/config.yaml)")
	pf.StringVar(&a.flags.envFile, "env-file", "", "Load NEXT_SALAH_* variables from a dotenv file")

	rootCmd.Flags().StringVar(&a.flags.format, "format", d.Format,
		"Output format: human, signed, time, name, full, relative, or a custom Go template")

	rootCmd.AddCommand(a.newTodayCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newWeekCmd())
	rootCmd.AddCommand(a.newMonthCmd())
	rootCmd.AddCommand(a.newQueryCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// prayerArg accepts at most one positional token naming the target prayer.
func prayerArg(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts at most 1 prayer name, received %d", prayer.ErrInvalidArgument, len(args))
	}
	if len(args) == 1 {
		if _, err := prayer.ParseTarget(args[0]); err != nil {
			return err
		}
	}
	return nil
}

// invalidArgs marks positional-argument errors from a cobra validator as
// invalid arguments.
func invalidArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", prayer.ErrInvalidArgument, err)
		}
		return nil
	}
}

// resolveConfig builds the effective configuration with the priority:
// CLI flags > environment > config file > defaults.
func (a *app) resolveConfig(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := config.LoadEnvFile(a.flags.envFile); err != nil {
		return fmt.Errorf("%w: %w", prayer.ErrInvalidArgument, err)
	}

	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", prayer.ErrInvalidArgument, err)
	}

	a.applyFlags(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger.SetLevel(cfg.ParsedLogLevel)

	if path, err := a.configPath(); err == nil {
		logger.InfoKV(ctx, "using config file", "path", path)
	}

	logger.DebugKV(ctx, "resolved configuration",
		"location", cfg.Location().String(),
		"offset", cfg.ParsedOffset.String(),
		"method", cfg.ParsedMethod.String(),
		"asr", cfg.ParsedAsr.String(),
		"sunrise", cfg.Sunrise,
		"active_window", cfg.ParsedActiveWindow.String())

	a.cfg = cfg
	a.zone = cfg.ParsedOffset.Zone()
	return nil
}

// applyFlags copies explicitly set flags over the loaded config.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	local := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(local, root, "lat") {
		cfg.Latitude = a.flags.latitude
	}
	if flagWasSet(local, root, "long") {
		cfg.Longitude = a.flags.longitude
	}
	if flagWasSet(local, root, "timedelta") {
		cfg.TimeDelta = a.flags.timeDelta
	}
	if flagWasSet(local, root, "sunrise") {
		cfg.Sunrise = a.flags.sunrise
	}
	if flagWasSet(local, root, "method") {
		cfg.Method = a.flags.method
	}
	if flagWasSet(local, root, "asr") {
		cfg.Asr = a.flags.asr
	}
	if flagWasSet(local, root, "time-format") {
		cfg.TimeFormat = a.flags.timeFormat
	}
	if flagWasSet(local, root, "log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flagWasSet(local, root, "format") {
		cfg.Format = a.flags.format
	}
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// provider returns a schedule provider for the resolved config, memoising
// up to size days.
func (a *app) provider(size int) (*cache.Provider, error) {
	calc := astro.NewCalculator(a.cfg.Location(), a.zone, a.cfg.ParsedMethod, a.cfg.ParsedAsr)
	return cache.New(calc, size)
}

// now returns the current time in the configured offset.
func (a *app) now() time.Time {
	return a.clock.Now().In(a.zone)
}
