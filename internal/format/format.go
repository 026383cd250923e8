// Package format renders durations in the four report formats. The
// format governs presentation only; stored data never changes with it.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the closed set of report formats.
type Mode int

const (
	Smart Mode = iota // adaptive, largest units first
	Full              // every unit spelled out
	Short             // compact unit suffixes
	Hours             // single decimal hours figure
)

// Modes lists the accepted format names, in flag-help order.
var Modes = []string{"smart", "full", "short", "hours"}

// Parse maps a format name to its Mode.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smart":
		return Smart, nil
	case "full":
		return Full, nil
	case "short":
		return Short, nil
	case "hours":
		return Hours, nil
	}
	return Smart, fmt.Errorf("unknown format %q (expected one of %s)", s, strings.Join(Modes, ", "))
}

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Short:
		return "short"
	case Hours:
		return "hours"
	default:
		return "smart"
	}
}

// Time unit sizes in seconds; months approximated as 30 days.
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerWeek   = 604800
	secondsPerMonth  = 2592000
)

type breakdown struct {
	months, weeks, days, hours, minutes, seconds int64
}

func split(d time.Duration) breakdown {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	var b breakdown
	b.months, secs = secs/secondsPerMonth, secs%secondsPerMonth
	b.weeks, secs = secs/secondsPerWeek, secs%secondsPerWeek
	b.days, secs = secs/secondsPerDay, secs%secondsPerDay
	b.hours, secs = secs/secondsPerHour, secs%secondsPerHour
	b.minutes, b.seconds = secs/secondsPerMinute, secs%secondsPerMinute
	return b
}

// Duration renders d according to the mode.
func Duration(d time.Duration, m Mode) string {
	b := split(d)
	switch m {
	case Full:
		return b.full()
	case Short:
		return b.short()
	case Hours:
		return strconv.FormatFloat(d.Hours(), 'f', 1, 64)
	default:
		return b.smart()
	}
}

func unit(n int64, name string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}

func (b breakdown) full() string {
	var parts []string
	if b.months > 0 {
		parts = append(parts, unit(b.months, "month"))
	}
	if b.weeks > 0 {
		parts = append(parts, unit(b.weeks, "week"))
	}
	if b.days > 0 {
		parts = append(parts, unit(b.days, "day"))
	}
	if b.hours > 0 {
		parts = append(parts, unit(b.hours, "hour"))
	}
	if b.minutes > 0 {
		parts = append(parts, unit(b.minutes, "minute"))
	}
	if b.seconds > 0 || len(parts) == 0 {
		parts = append(parts, unit(b.seconds, "second"))
	}
	return strings.Join(parts, ", ")
}

func (b breakdown) short() string {
	var parts []string
	if b.months > 0 {
		parts = append(parts, fmt.Sprintf("%dmo", b.months))
	}
	if b.weeks > 0 {
		parts = append(parts, fmt.Sprintf("%dw", b.weeks))
	}
	if b.days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", b.days))
	}
	if b.hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", b.hours))
	}
	if b.minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", b.minutes))
	}
	if b.seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", b.seconds))
	}
	return strings.Join(parts, " ")
}

// smart keeps the few units next to the largest one and drops the rest.
func (b breakdown) smart() string {
	join := func(parts []string) string { return strings.Join(parts, ", ") }
	switch {
	case b.months > 0:
		parts := []string{unit(b.months, "month")}
		if b.weeks > 0 {
			parts = append(parts, unit(b.weeks, "week"))
		}
		if b.days > 0 {
			parts = append(parts, unit(b.days, "day"))
		}
		if b.hours > 0 {
			parts = append(parts, unit(b.hours, "hour"))
		}
		return join(parts)
	case b.weeks > 0:
		parts := []string{unit(b.weeks, "week")}
		if b.days > 0 {
			parts = append(parts, unit(b.days, "day"))
		}
		if b.hours > 0 {
			parts = append(parts, unit(b.hours, "hour"))
		}
		return join(parts)
	case b.days > 0:
		parts := []string{unit(b.days, "day")}
		if b.hours > 0 {
			parts = append(parts, unit(b.hours, "hour"))
		}
		if b.minutes > 0 {
			parts = append(parts, unit(b.minutes, "minute"))
		}
		return join(parts)
	case b.hours > 0:
		return join([]string{unit(b.hours, "hour"), unit(b.minutes, "minute")})
	case b.minutes > 0:
		return join([]string{unit(b.minutes, "minute"), unit(b.seconds, "second")})
	default:
		return unit(b.seconds, "second")
	}
}

// Timestamp is the layout used when reports print session times.
func Timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
