package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/next-salah/internal/astro"
	"github.com/smokyabdulrahman/next-salah/internal/display"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

func (a *app) newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule",
		Long:  "Display all six times for today with the passed, active and next prayers marked.",
		Args:  invalidArgs(cobra.NoArgs),
		RunE:  a.runToday,
	}
}

// dayView is today's schedule with each prayer's state and the next prayer,
// which may fall on tomorrow.
type dayView struct {
	schedule *prayer.Schedule
	states   map[prayer.Name]display.State
	active   *prayer.Selection
	next     *prayer.Selection
}

func (a *app) runToday(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	provider, err := a.provider(reportCacheSize)
	if err != nil {
		return err
	}

	now := a.now()
	view, err := a.buildDayView(ctx, provider, now)
	if err != nil {
		return err
	}

	if a.flags.json {
		return a.printTodayJSON(cmd.OutOrStdout(), view, now)
	}

	a.printTodayRich(cmd.OutOrStdout(), view, now)
	return nil
}

// buildDayView runs the selector in nearest and next mode to classify each
// of today's prayers.
func (a *app) buildDayView(ctx context.Context, p prayer.Provider, now time.Time) (*dayView, error) {
	sched, err := p.Schedule(ctx, prayer.Day(now))
	if err != nil {
		return nil, err
	}

	opts := prayer.SelectOptions{IncludeSunrise: a.cfg.Sunrise, ActiveWindow: a.cfg.ParsedActiveWindow}

	next, err := prayer.Select(ctx, p, prayer.Target{Mode: prayer.ModeNext}, now, opts)
	if err != nil {
		return nil, err
	}
	nearest, err := prayer.Select(ctx, p, prayer.Target{Mode: prayer.ModeNearest}, now, opts)
	if err != nil {
		return nil, err
	}

	view := &dayView{
		schedule: sched,
		states:   make(map[prayer.Name]display.State, len(sched.Prayers)),
		next:     next,
	}
	if nearest.Delta <= 0 {
		view.active = nearest
	}

	for _, pr := range sched.Prayers {
		state := display.StateUpcoming
		switch {
		case view.active != nil && samePrayer(pr, view.active.Prayer):
			state = display.StateActive
		case samePrayer(pr, next.Prayer):
			state = display.StateNext
		case !pr.Time.After(now):
			state = display.StatePassed
		}
		view.states[pr.Name] = state
	}

	return view, nil
}

func samePrayer(a, b prayer.Prayer) bool {
	return a.Name == b.Name && a.Time.Equal(b.Time)
}

// nextIsTomorrow reports whether every prayer of the day has passed.
func (v *dayView) nextIsTomorrow() bool {
	return !prayer.Day(v.next.Prayer.Time).Equal(v.schedule.Date)
}

// marker labels a row, adding the relative time unless it is the current second.
func marker(label string, t, now time.Time) string {
	if d := t.Sub(now); d > -time.Second && d < time.Second {
		return "<- " + label
	}
	return "<- " + label + ", " + humanize.RelTime(t, now, "ago", "from now")
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func (a *app) printTodayRich(w io.Writer, view *dayView, now time.Time) {
	layout := a.cfg.TimeLayout()
	hijri := astro.ToHijri(view.schedule.Date)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s (%s)\n", view.schedule.Location, a.cfg.ParsedOffset)
	fmt.Fprintf(w, "  %s\n", view.schedule.Date.Format("Mon 02 Jan 2006"))
	if hijri.Month == astro.Ramadan {
		fmt.Fprintf(w, "  %s\n", display.Yellow(hijri.String()))
	} else {
		fmt.Fprintf(w, "  %s\n", hijri)
	}
	fmt.Fprintln(w)

	tbl := display.NewTable("Prayer", "Time", "")
	for _, p := range view.schedule.Prayers {
		state := view.states[p.Name]

		mark := ""
		switch state {
		case display.StateActive:
			mark = marker("now", p.Time, now)
		case display.StateNext:
			mark = marker("next", p.Time, now)
		}

		row := tbl.AddRow(p.Name.Title(), p.Time.Format(layout), mark)
		tbl.SetRowState(row, state)
	}
	fmt.Fprint(w, tbl.Render())

	if view.nextIsTomorrow() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Gray(fmt.Sprintf("Next: %s tomorrow at %s, %s",
			view.next.Prayer.Name.Title(),
			view.next.Prayer.Time.Format(layout),
			humanize.RelTime(view.next.Prayer.Time, now, "ago", "from now"))))
	}

	fmt.Fprintln(w)
}

// todayJSON is the JSON output structure for the today command.
type todayJSON struct {
	Date     string        `json:"date"`
	Hijri    string        `json:"hijri"`
	Location locationJSON  `json:"location"`
	Offset   string        `json:"offset"`
	Method   string        `json:"method"`
	Asr      string        `json:"asr"`
	Prayers  []prayerJSON  `json:"prayers"`
	Current  string        `json:"current,omitempty"`
	Next     todayJSONNext `json:"next"`
}

type prayerJSON struct {
	Name  string `json:"name"`
	Time  string `json:"time"`
	State string `json:"state"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

// printTodayJSON renders structured JSON output.
func (a *app) printTodayJSON(w io.Writer, view *dayView, now time.Time) error {
	layout := a.cfg.TimeLayout()

	out := todayJSON{
		Date:     view.schedule.Date.Format(time.DateOnly),
		Hijri:    astro.ToHijri(view.schedule.Date).String(),
		Location: a.locationJSON(),
		Offset:   a.cfg.ParsedOffset.String(),
		Method:   a.cfg.ParsedMethod.String(),
		Asr:      a.cfg.ParsedAsr.String(),
		Next: todayJSONNext{
			Prayer:    view.next.Prayer.Name.String(),
			Date:      view.next.Prayer.Time.Format(time.DateOnly),
			Time:      view.next.Prayer.Time.Format(layout),
			Remaining: prayer.FormatDuration(view.next.Prayer.Time.Sub(now)),
		},
	}

	for _, p := range view.schedule.Prayers {
		out.Prayers = append(out.Prayers, prayerJSON{
			Name:  p.Name.String(),
			Time:  p.Time.Format(layout),
			State: view.states[p.Name].String(),
		})
	}

	if view.active != nil {
		out.Current = view.active.Prayer.Name.String()
	}

	return writeJSON(w, out)
}
