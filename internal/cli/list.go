package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/display"
	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

const (
	defaultListDays = 7
	maxListDays     = 366
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days starting today (default: 7).",
		Args:  invalidArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := defaultListDays
			if len(args) > 0 {
				var err error
				if days, err = parseDays(args[0]); err != nil {
					return err
				}
			}
			return a.runList(cmd, days)
		},
	}
}

func (a *app) newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  invalidArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, 7)
		},
	}
}

func (a *app) newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'.",
		Args:  invalidArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, 30)
		},
	}
}

// parseDays accepts a day count between 1 and maxListDays, or "week"/"month".
func parseDays(s string) (int, error) {
	switch s {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxListDays {
		return 0, fmt.Errorf("%w: invalid number of days: %q (must be 1-%d, week or month)",
			prayer.ErrInvalidArgument, s, maxListDays)
	}
	return n, nil
}

// runList prints the schedules of `days` consecutive days starting today.
func (a *app) runList(cmd *cobra.Command, days int) error {
	ctx := cmd.Context()

	provider, err := a.provider(days)
	if err != nil {
		return err
	}

	now := a.now()
	schedules, err := collectSchedules(ctx, provider, prayer.Day(now), days)
	if err != nil {
		return err
	}

	if a.flags.json {
		return a.printListJSON(cmd.OutOrStdout(), schedules)
	}

	a.printListRich(cmd.OutOrStdout(), schedules, now)
	return nil
}

// collectSchedules computes `days` consecutive schedules starting at start.
// A day without a computable schedule (polar day or night) is logged and kept
// as an empty schedule. It fails only if no day can be computed.
func collectSchedules(ctx context.Context, p prayer.Provider, start time.Time, days int) ([]*prayer.Schedule, error) {
	schedules := make([]*prayer.Schedule, 0, days)

	var (
		computed int
		lastErr  error
	)
	for i := range days {
		date := start.AddDate(0, 0, i)

		sched, err := p.Schedule(ctx, date)
		switch {
		case errors.Is(err, prayer.ErrComputation):
			logger.WarnKV(ctx, "skipping day without a computable schedule",
				"date", date.Format(time.DateOnly),
				"error", err)
			sched, lastErr = &prayer.Schedule{Date: date}, err
		case err != nil:
			return nil, err
		default:
			computed++
		}

		schedules = append(schedules, sched)
	}

	if computed == 0 {
		return nil, lastErr
	}
	return schedules, nil
}

// missingTime fills the cells of a day without a schedule.
const missingTime = "-"

// timeCell formats name's time in sched, or missingTime.
func timeCell(sched *prayer.Schedule, name prayer.Name, layout string) string {
	p, ok := sched.Get(name)
	if !ok {
		return missingTime
	}
	return p.Time.Format(layout)
}

func (a *app) printListRich(w io.Writer, schedules []*prayer.Schedule, now time.Time) {
	layout := a.cfg.TimeLayout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("Prayer Times, %d days", len(schedules)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s (%s, %s)\n", a.cfg.Location(), a.cfg.ParsedOffset, a.cfg.ParsedMethod)
	fmt.Fprintln(w)

	headers := []string{"Date", "Hijri"}
	for _, n := range prayer.AllNames {
		headers = append(headers, n.Title())
	}
	tbl := display.NewTable(headers...)

	today := prayer.Day(now)
	for _, sched := range schedules {
		hijri := astro.ToHijri(sched.Date)
		row := []string{sched.Date.Format("Mon 02 Jan"), fmt.Sprintf("%d %s", hijri.Day, hijri.MonthName())}
		for _, n := range prayer.AllNames {
			row = append(row, timeCell(sched, n, layout))
		}

		idx := tbl.AddRow(row...)
		if sched.Date.Equal(today) {
			tbl.SetRowState(idx, display.StateNext)
		}
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location locationJSON  `json:"location"`
	Offset   string        `json:"offset"`
	Method   string        `json:"method"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func (a *app) printListJSON(w io.Writer, schedules []*prayer.Schedule) error {
	layout := a.cfg.TimeLayout()

	out := listJSONOutput{
		Location: a.locationJSON(),
		Offset:   a.cfg.ParsedOffset.String(),
		Method:   a.cfg.ParsedMethod.String(),
	}

	for _, sched := range schedules {
		timings := make(map[string]string, len(sched.Prayers))
		for _, p := range sched.Prayers {
			timings[p.Name.String()] = p.Time.Format(layout)
		}

		out.Days = append(out.Days, listJSONDay{
			Date:    sched.Date.Format(time.DateOnly),
			Hijri:   astro.ToHijri(sched.Date).String(),
			Timings: timings,
		})
	}

	return writeJSON(w, out)
}
