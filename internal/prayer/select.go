package prayer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultActiveWindow is how long a prayer stays "current" after its azan
// in nearest mode.
const DefaultActiveWindow = 20 * time.Minute

// Mode selects how a prayer is picked from the schedule.
type Mode int

const (
	// ModeNearest picks the active prayer (within its window) or the next one.
	ModeNearest Mode = iota
	// ModeNext picks the first prayer strictly after now.
	ModeNext
	// ModeNamed picks the requested prayer directly.
	ModeNamed
)

// Target is the resolved positional request: nothing, "next" or a prayer name.
type Target struct {
	Mode Mode
	Name Name
}

// String returns the token that produced the target.
func (t Target) String() string {
	switch t.Mode {
	case ModeNext:
		return "next"
	case ModeNamed:
		return t.Name.String()
	default:
		return ""
	}
}

// ParseTarget resolves a positional token. An empty token selects nearest mode.
func ParseTarget(token string) (Target, error) {
	token = strings.TrimSpace(token)
	switch strings.ToLower(token) {
	case "":
		return Target{Mode: ModeNearest}, nil
	case "next":
		return Target{Mode: ModeNext}, nil
	}
	name, err := ParseName(token)
	if err != nil {
		return Target{}, err
	}
	return Target{Mode: ModeNamed, Name: name}, nil
}

// SelectOptions tunes next and nearest selection.
type SelectOptions struct {
	// IncludeSunrise makes sunrise (duha) a candidate for next/nearest selection.
	IncludeSunrise bool
	// ActiveWindow is the closed interval after a prayer's time during which
	// nearest mode reports it as elapsed. Zero means DefaultActiveWindow.
	ActiveWindow time.Duration
}

// Selection is the chosen prayer and its signed distance from now.
type Selection struct {
	Target Target
	Prayer Prayer
	Now    time.Time
	// Delta is Prayer.Time - Now: positive while remaining, negative once elapsed.
	Delta time.Duration
}

// Elapsed reports whether the selected prayer time has already passed.
func (s Selection) Elapsed() bool {
	return s.Delta < 0
}

// Select picks a prayer for target relative to now. Schedules are requested
// from p for now's calendar date, and for the previous or following day when
// the selection crosses midnight.
func Select(ctx context.Context, p Provider, target Target, now time.Time, opts SelectOptions) (*Selection, error) {
	if opts.ActiveWindow <= 0 {
		opts.ActiveWindow = DefaultActiveWindow
	}

	today := Day(now)
	sched, err := p.Schedule(ctx, today)
	if err != nil {
		return nil, err
	}

	switch target.Mode {
	case ModeNamed:
		pr, ok := sched.Get(target.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from schedule for %s", ErrSelection, target.Name, today.Format(time.DateOnly))
		}
		return newSelection(target, pr, now), nil

	case ModeNext:
		return selectNext(ctx, p, target, sched, now, opts)

	case ModeNearest:
		candidates := sched.Candidates(opts.IncludeSunrise)
		if pr, ok := activePrayer(candidates, now, opts.ActiveWindow); ok {
			return newSelection(target, pr, now), nil
		}

		// Before the first prayer of the day, last night's isha may still be active.
		if len(candidates) > 0 && now.Before(candidates[0].Time) {
			yesterday, err := p.Schedule(ctx, today.AddDate(0, 0, -1))
			if err != nil {
				return nil, err
			}
			if isha, ok := yesterday.Get(Isha); ok && inWindow(isha, now, opts.ActiveWindow) {
				return newSelection(target, isha, now), nil
			}
		}

		return selectNext(ctx, p, target, sched, now, opts)

	default:
		return nil, fmt.Errorf("%w: unknown selection mode %d", ErrSelection, target.Mode)
	}
}

// NextPrayer finds the first prayer strictly after now.
// It returns nil when every prayer has passed.
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

func selectNext(ctx context.Context, p Provider, target Target, sched *Schedule, now time.Time, opts SelectOptions) (*Selection, error) {
	if next := NextPrayer(sched.Candidates(opts.IncludeSunrise), now); next != nil {
		return newSelection(target, *next, now), nil
	}

	// Every prayer today has passed: wrap to tomorrow's fajr.
	tomorrow, err := p.Schedule(ctx, Day(now).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	fajr, ok := tomorrow.Get(Fajr)
	if !ok {
		return nil, fmt.Errorf("%w: fajr missing from schedule for %s", ErrSelection, tomorrow.Date.Format(time.DateOnly))
	}
	if !fajr.Time.After(now) {
		return nil, fmt.Errorf("%w: tomorrow's fajr %s is not after %s", ErrSelection,
			fajr.Time.Format(time.DateTime), now.Format(time.DateTime))
	}
	return newSelection(target, fajr, now), nil
}

// activePrayer returns the latest prayer whose window [t, t+window] contains now.
func activePrayer(prayers []Prayer, now time.Time, window time.Duration) (Prayer, bool) {
	for i := len(prayers) - 1; i >= 0; i-- {
		if inWindow(prayers[i], now, window) {
			return prayers[i], true
		}
	}
	return Prayer{}, false
}

func inWindow(p Prayer, now time.Time, window time.Duration) bool {
	return !now.Before(p.Time) && !now.After(p.Time.Add(window))
}

func newSelection(target Target, p Prayer, now time.Time) *Selection {
	return &Selection{
		Target: target,
		Prayer: p,
		Now:    now,
		Delta:  TimeRemaining(p, now),
	}
}
