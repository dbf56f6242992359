package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/display"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

func (a *app) newQueryCmd() *cobra.Command {
	var days string

	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Show one prayer's time across several days",
		Long: "Show a single prayer's time for today, or across multiple days with --days.\n\n" +
			"Valid prayer names: fajr, sunrise, dhuhr, asr, maghrib, isha",
		Args: invalidArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := prayer.ParseName(args[0])
			if err != nil {
				return err
			}

			n := 1
			if days != "" {
				if n, err = parseDays(days); err != nil {
					return err
				}
			}
			return a.runQuery(cmd, name, n)
		},
	}

	cmd.Flags().StringVar(&days, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, name prayer.Name, days int) error {
	provider, err := a.provider(days)
	if err != nil {
		return err
	}

	now := a.now()
	schedules, err := collectSchedules(cmd.Context(), provider, prayer.Day(now), days)
	if err != nil {
		return err
	}

	if a.flags.json {
		return a.printQueryJSON(cmd.OutOrStdout(), name, schedules)
	}

	// A single day prints the bare "name time" line, like a named request.
	if days == 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, timeCell(schedules[0], name, a.cfg.TimeLayout()))
		return nil
	}

	a.printQueryRich(cmd.OutOrStdout(), name, schedules, now)
	return nil
}

func (a *app) printQueryRich(w io.Writer, name prayer.Name, schedules []*prayer.Schedule, now time.Time) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("%s Times, %d days", name.Title(), len(schedules)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s (%s, %s)\n", a.cfg.Location(), a.cfg.ParsedOffset, a.cfg.ParsedMethod)
	fmt.Fprintln(w)

	tbl := display.NewTable("Date", name.Title())
	today := prayer.Day(now)
	for _, sched := range schedules {
		idx := tbl.AddRow(sched.Date.Format("Mon 02 Jan"), timeCell(sched, name, a.cfg.TimeLayout()))
		if sched.Date.Equal(today) {
			tbl.SetRowState(idx, display.StateNext)
		}
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

type queryJSON struct {
	Location locationJSON   `json:"location"`
	Offset   string         `json:"offset"`
	Prayer   string         `json:"prayer"`
	Days     []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri"`
	Time  string `json:"time"`
}

func (a *app) printQueryJSON(w io.Writer, name prayer.Name, schedules []*prayer.Schedule) error {
	out := queryJSON{
		Location: a.locationJSON(),
		Offset:   a.cfg.ParsedOffset.String(),
		Prayer:   name.String(),
	}

	for _, sched := range schedules {
		out.Days = append(out.Days, queryJSONDay{
			Date:  sched.Date.Format(time.DateOnly),
			Hijri: astro.ToHijri(sched.Date).String(),
			Time:  timeCell(sched, name, a.cfg.TimeLayout()),
		})
	}

	return writeJSON(w, out)
}
