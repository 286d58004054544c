// Package reminder parses reminder rules and decides when they fire.
// A rule is "daily@HH:MM", "weekdays@HH:MM", or "weekly:DAY@HH:MM"
// (DAY one of SU MO TU WE TH FR SA).
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Freq int

const (
	Daily Freq = iota
	Weekdays
	Weekly
)

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

type Rule struct {
	Freq   Freq
	Day    time.Weekday // only for Weekly
	Hour   int
	Minute int
}

// Parse parses a rule string like "weekdays@12:30" or "weekly:MO@08:00".
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	parts := strings.SplitN(rule, "@", 2)
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("invalid rule %q: missing @time", rule)
	}

	r := Rule{}
	freq := strings.ToLower(strings.TrimSpace(parts[0]))
	switch {
	case freq == "daily":
		r.Freq = Daily
	case freq == "weekdays":
		r.Freq = Weekdays
	case strings.HasPrefix(freq, "weekly:"):
		day, ok := dayNames[strings.ToUpper(strings.TrimPrefix(freq, "weekly:"))]
		if !ok {
			return Rule{}, fmt.Errorf("invalid rule %q: unknown day", rule)
		}
		r.Freq = Weekly
		r.Day = day
	default:
		return Rule{}, fmt.Errorf("invalid rule %q: unknown frequency", rule)
	}

	hm := strings.SplitN(strings.TrimSpace(parts[1]), ":", 2)
	if len(hm) != 2 {
		return Rule{}, fmt.Errorf("invalid rule %q: time must be HH:MM", rule)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 0 || hour > 23 {
		return Rule{}, fmt.Errorf("invalid rule %q: bad hour", rule)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return Rule{}, fmt.Errorf("invalid rule %q: bad minute", rule)
	}
	r.Hour = hour
	r.Minute = minute

	return r, nil
}

// DueAt reports whether the rule fires in the minute containing now.
func (r Rule) DueAt(now time.Time) bool {
	if now.Hour() != r.Hour || now.Minute() != r.Minute {
		return false
	}
	switch r.Freq {
	case Daily:
		return true
	case Weekdays:
		wd := now.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case Weekly:
		return now.Weekday() == r.Day
	default:
		return false
	}
}

// NextAfter returns the first time strictly after now at which the rule
// fires, in now's location.
func (r Rule) NextAfter(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), r.Hour, r.Minute, 0, 0, now.Location())
	for {
		if candidate.After(now) && r.DueAt(candidate) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
}
