package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/config"
	"github.com/smokyabdulrahman/next-salah/internal/display"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		Args:  invalidArgs(cobra.NoArgs),
		// Replaces the root hook: config management has to work even when
		// the stored file holds invalid values.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadEnvFile(a.flags.envFile)
		},
		RunE: a.runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n"+
			"  next-salah config set latitude 21.4225\n"+
			"  next-salah config set longitude 39.8262\n"+
			"  next-salah config set timedelta 3\n"+
			"  next-salah config set method makkah\n"+
			"  next-salah config set time_format 12h",
			strings.Join(config.ValidKeys, ", ")),
		Args: invalidArgs(cobra.ExactArgs(2)),
		RunE: a.runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  invalidArgs(cobra.NoArgs),
		RunE:  a.runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  invalidArgs(cobra.NoArgs),
		RunE:  a.runConfigPath,
	})

	return cmd
}

// configPath returns --config, or the default location.
func (a *app) configPath() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	return config.Path()
}

// runConfigShow displays the configuration after merging the environment.
func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", prayer.ErrInvalidArgument, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		if key == "method" {
			val = formatMethodValue(val)
		}
		fmt.Fprintf(w, "  %-14s %s\n", key, val)
	}
	return nil
}

// runConfigSet sets a config key and writes the file. Environment overrides
// are not written back.
func (a *app) runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := a.configPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(a.flags.configPath)
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return fmt.Errorf("%w: %w", prayer.ErrInvalidArgument, err)
		}
		return err
	}

	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigReset deletes the config file.
func (a *app) runConfigReset(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if err := config.ResetAt(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func (a *app) runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method's full name to its key.
func formatMethodValue(val string) string {
	m, err := astro.ParseMethod(val)
	if err != nil {
		return val
	}
	for _, info := range astro.Methods {
		if info.Method == m {
			return fmt.Sprintf("%s (%s)", val, info.Name)
		}
	}
	return val
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the supported calculation methods with their twilight angles.",
		Args:  invalidArgs(cobra.NoArgs),
		// Listing methods needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			tbl := display.NewTable("Key", "Name", "Fajr", "Maghrib", "Isha")
			for _, info := range astro.Methods {
				tbl.AddRow(info.Key, info.Name,
					formatAngle(info.Params.FajrAngle),
					formatMaghrib(info.Params),
					formatIsha(info.Params))
			}

			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Use --method <key> to select a calculation method (default: %s).\n", astro.DefaultMethod)
			return nil
		},
	}
}

func formatAngle(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64) + "°"
}

func formatMaghrib(p astro.Params) string {
	if p.MaghribAngle > 0 {
		return formatAngle(p.MaghribAngle)
	}
	return "sunset"
}

func formatIsha(p astro.Params) string {
	if p.IshaInterval == 0 {
		return formatAngle(p.IshaAngle)
	}
	s := fmt.Sprintf("+%d min", int(p.IshaInterval.Minutes()))
	if p.RamadanIshaInterval > 0 {
		s += fmt.Sprintf(" (+%d in Ramadan)", int(p.RamadanIshaInterval.Minutes()))
	}
	return s
}
