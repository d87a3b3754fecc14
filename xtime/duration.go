// Package xtime extends the duration syntax of the time package with day,
// week, month and year units, used in configuration files and CLI flags.
package xtime

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type unit struct {
	symbols string
	dur     time.Duration
}

// Units larger than an hour, from largest to smallest. Months are 30 days,
// and years are 365 days.
var longUnits = []unit{
	{"yY", 365 * 24 * time.Hour},
	{"M", 30 * 24 * time.Hour},
	{"Ww", 7 * 24 * time.Hour},
	{"Dd", 24 * time.Hour},
}

var componentRx = regexp.MustCompile(`(\d*\.\d+|\d+)([^\d.]*)`)

// ParseDuration parses a duration string, e.g. "10d", "-1.5w", "3Y4M5d" or
// "2d12h30s". Besides the units supported by time.ParseDuration, it accepts
// "d"/"D" for days, "w"/"W" for weeks, "M" for months and "y"/"Y" for years.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}

	var (
		sum     time.Duration
		matched int
	)
	for _, m := range componentRx.FindAllStringSubmatch(s, -1) {
		matched += len(m[0])
		num, sym := m[1], m[2]

		scale := time.Duration(0)
		for _, u := range longUnits {
			if len(sym) == 1 && strings.Contains(u.symbols, sym) {
				scale = u.dur
				break
			}
		}
		if scale == 0 {
			dur, err := time.ParseDuration(num + sym)
			if err != nil {
				return 0, err //nolint:wrapcheck // The error includes the input.
			}
			sum += dur
			continue
		}

		dur, err := time.ParseDuration(num + "h")
		if err != nil {
			return 0, err //nolint:wrapcheck // The error includes the input.
		}
		sum += dur / time.Hour * scale
		sum += (dur % time.Hour) * (scale / time.Hour)
	}
	if matched != len(s) {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}

	if neg {
		sum = -sum
	}

	return sum, nil
}

// FormatDuration formats a duration using the units of ParseDuration, e.g.
// "10d", "-1w2d" or "3Y4M5d". The round parameter is the smallest unit that is
// included in the output.
func FormatDuration(d time.Duration, round time.Duration) string {
	if round > 0 {
		d = d.Round(round)
	}
	if d == 0 {
		return "0s"
	}

	neg := d < 0
	if neg {
		d = -d
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}

	for _, u := range longUnits {
		if n := d / u.dur; n > 0 {
			fmt.Fprintf(&sb, "%d%c", n, u.symbols[len(u.symbols)-1])
			d %= u.dur
		}
	}

	short := []struct {
		sym string
		dur time.Duration
	}{
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
		{"ms", time.Millisecond},
		{"µs", time.Microsecond},
		{"ns", time.Nanosecond},
	}
	for _, u := range short {
		if u.dur < round {
			break
		}
		if n := d / u.dur; n > 0 {
			fmt.Fprintf(&sb, "%d%s", n, u.sym)
			d %= u.dur
		}
	}

	return sb.String()
}
