package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// Format constants for display modes.
const (
	FormatHuman    = "human"
	FormatSigned   = "signed"
	FormatTime     = "time"
	FormatName     = "name"
	FormatFull     = "full"
	FormatRelative = "relative"
)

// Formats lists the named display modes.
var Formats = []string{FormatHuman, FormatSigned, FormatTime, FormatName, FormatFull, FormatRelative}

// Go time layouts for the supported clock styles.
const (
	TimeLayout24h = "15:04"
	TimeLayout12h = "3:04 PM"
)

// ValidateFormat accepts a named mode or a Go template containing "{{".
func ValidateFormat(mode string) error {
	if strings.Contains(mode, "{{") {
		if _, err := template.New("custom").Parse(mode); err != nil {
			return fmt.Errorf("%w: bad format template: %v", ErrInvalidArgument, err)
		}
		return nil
	}
	for _, f := range Formats {
		if mode == f {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown format %q; valid formats: %s, or a Go template",
		ErrInvalidArgument, mode, strings.Join(Formats, ", "))
}

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // lower-case prayer name, e.g. "asr"
	Title     string // capitalized prayer name, e.g. "Asr"
	ShortName string // abbreviation, e.g. "A"
	Time      string // prayer time in the requested layout, e.g. "15:02"
	Remaining string // absolute distance, e.g. "2 hours 15 minutes"
	Hours     int    // whole hours of the absolute distance
	Minutes   int    // minutes after Hours
	Elapsed   bool   // true once the prayer time has passed
}

// FormatOutput renders a selection according to mode.
// timeLayout should be TimeLayout24h or TimeLayout12h.
//
// If mode contains "{{", it is treated as a custom Go template string.
//
// Example: "{{.Title}} in {{.Remaining}}" -> "Asr in 2 hours 15 minutes"
func FormatOutput(sel Selection, mode, timeLayout string) string {
	p := sel.Prayer
	timeStr := p.Time.Format(timeLayout)
	abs := absDuration(sel.Delta)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      p.Name.String(),
			Title:     p.Name.Title(),
			ShortName: ShortNames[p.Name],
			Time:      timeStr,
			Remaining: FormatDuration(abs),
			Hours:     int(abs.Hours()),
			Minutes:   int(abs.Minutes()) % 60,
			Elapsed:   sel.Elapsed(),
		})
	}

	switch mode {
	case FormatSigned:
		return FormatSignedDelta(sel.Delta)
	case FormatTime:
		return timeStr
	case FormatName:
		return p.Name.Title()
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", p.Name.Title(), timeStr, FormatDelta(sel.Delta))
	case FormatRelative:
		return fmt.Sprintf("%s %s", p.Name, humanize.RelTime(p.Time, sel.Now, "ago", "from now"))
	default:
		return FormatHumanLine(sel, timeLayout)
	}
}

// FormatHumanLine renders the default output. A named request echoes the
// schedule entry; next and nearest requests report the distance.
func FormatHumanLine(sel Selection, timeLayout string) string {
	if sel.Target.Mode == ModeNamed {
		return fmt.Sprintf("%s %s", sel.Prayer.Name, sel.Prayer.Time.Format(timeLayout))
	}
	return fmt.Sprintf("%s, %s", sel.Prayer.Name, FormatDelta(sel.Delta))
}

// FormatDelta phrases a signed delta as "2 hours 15 minutes remaining",
// "10 minutes ago" or "now".
func FormatDelta(d time.Duration) string {
	abs := absDuration(d)
	if abs < time.Second {
		return "now"
	}
	if d > 0 {
		return FormatDuration(abs) + " remaining"
	}
	return FormatDuration(abs) + " ago"
}

// FormatDuration writes a non-negative duration as hours and minutes,
// e.g. "1 hour 5 minutes". Seconds are truncated.
func FormatDuration(d time.Duration) string {
	d = absDuration(d)
	if d < time.Minute {
		return "less than a minute"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	var parts []string
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	return strings.Join(parts, " ")
}

// FormatSignedDelta renders the compact status-bar form: "-HH:MM" while a
// prayer is ahead, "+MM:SS" once it has passed and " 00:00" at the azan.
func FormatSignedDelta(d time.Duration) string {
	abs := absDuration(d).Truncate(time.Second)
	switch {
	case abs == 0:
		return " 00:00"
	case d > 0:
		return fmt.Sprintf("-%02d:%02d", int(abs.Hours()), int(abs.Minutes())%60)
	default:
		return fmt.Sprintf("+%02d:%02d", int(abs.Minutes()), int(abs.Seconds())%60)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
