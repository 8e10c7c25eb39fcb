package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// defaultTimedLength applies to timed events with neither DTEND nor DURATION.
const defaultTimedLength = time.Hour

// icsDuration is an RFC 5545 DURATION value. Days and weeks are nominal and
// follow the calendar; the time part is exact.
type icsDuration struct {
	Days  int
	Clock time.Duration
}

func (d icsDuration) addTo(t time.Time) time.Time {
	return t.AddDate(0, 0, d.Days).Add(d.Clock)
}

// parseDuration reads values like "PT1H30M", "P1D", "P2W" or "-PT15M".
func parseDuration(s string) (icsDuration, error) {
	var out icsDuration
	v := strings.ToUpper(strings.TrimSpace(s))
	sign := 1
	switch {
	case strings.HasPrefix(v, "-"):
		sign, v = -1, v[1:]
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	}
	if !strings.HasPrefix(v, "P") || len(v) < 2 {
		return out, fmt.Errorf("invalid DURATION %q", s)
	}
	v = v[1:]

	inTime := false
	num := ""
	seen := false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
			continue
		case r == 'T' && !inTime && num == "":
			inTime = true
			continue
		}
		if num == "" {
			return out, fmt.Errorf("invalid DURATION %q", s)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return out, fmt.Errorf("invalid DURATION %q: %w", s, err)
		}
		num = ""
		seen = true
		switch {
		case !inTime && r == 'W':
			out.Days += 7 * n
		case !inTime && r == 'D':
			out.Days += n
		case inTime && r == 'H':
			out.Clock += time.Duration(n) * time.Hour
		case inTime && r == 'M':
			out.Clock += time.Duration(n) * time.Minute
		case inTime && r == 'S':
			out.Clock += time.Duration(n) * time.Second
		default:
			return out, fmt.Errorf("invalid DURATION %q", s)
		}
	}
	if num != "" || !seen {
		return out, fmt.Errorf("invalid DURATION %q", s)
	}
	out.Days *= sign
	out.Clock *= time.Duration(sign)
	return out, nil
}
