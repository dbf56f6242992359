package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/next-salah/internal/logger"
	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

// reportCacheSize covers yesterday, today and tomorrow.
const reportCacheSize = 3

// runReport is the root command: print the nearest, next or named prayer.
func (a *app) runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	token := ""
	if len(args) > 0 {
		token = args[0]
	}
	target, err := prayer.ParseTarget(token)
	if err != nil {
		return err
	}

	provider, err := a.provider(reportCacheSize)
	if err != nil {
		return err
	}

	now := a.now()
	sel, err := prayer.Select(ctx, provider, target, now, prayer.SelectOptions{
		IncludeSunrise: a.cfg.Sunrise,
		ActiveWindow:   a.cfg.ParsedActiveWindow,
	})
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "selected prayer",
		"target", target.String(),
		"prayer", sel.Prayer.Name.String(),
		"time", sel.Prayer.Time.Format(time.DateTime),
		"delta", sel.Delta.String())

	if a.flags.json {
		return a.printSelectionJSON(cmd.OutOrStdout(), sel)
	}

	fmt.Fprintln(cmd.OutOrStdout(), prayer.FormatOutput(*sel, a.cfg.Format, a.cfg.TimeLayout()))
	return nil
}

// locationJSON is the location block shared by all JSON outputs.
type locationJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// selectionJSON is the JSON output structure for the root command.
type selectionJSON struct {
	Prayer       string       `json:"prayer"`
	Time         string       `json:"time"`
	DeltaSeconds int64        `json:"delta_seconds"`
	Human        string       `json:"human"`
	Elapsed      bool         `json:"elapsed"`
	Date         string       `json:"date"`
	Location     locationJSON `json:"location"`
	Offset       string       `json:"offset"`
}

func (a *app) locationJSON() locationJSON {
	return locationJSON{Latitude: a.cfg.Latitude, Longitude: a.cfg.Longitude}
}

func (a *app) printSelectionJSON(w io.Writer, sel *prayer.Selection) error {
	out := selectionJSON{
		Prayer:       sel.Prayer.Name.String(),
		Time:         sel.Prayer.Time.Format(a.cfg.TimeLayout()),
		DeltaSeconds: int64(sel.Delta.Truncate(time.Second) / time.Second),
		Human:        prayer.FormatHumanLine(*sel, a.cfg.TimeLayout()),
		Elapsed:      sel.Elapsed(),
		Date:         sel.Prayer.Time.Format(time.DateOnly),
		Location:     a.locationJSON(),
		Offset:       a.cfg.ParsedOffset.String(),
	}
	return writeJSON(w, out)
}

// writeJSON renders v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
