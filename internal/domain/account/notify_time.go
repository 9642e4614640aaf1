package account

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultNotifyTime is preselected on the registration form.
var DefaultNotifyTime = NotifyTime{Hour: 21, Minute: 30}

// MinuteOptions are the selectable minutes.
var MinuteOptions = []string{"00", "15", "30", "45"}

// HourOptions are the selectable hours, 00 through 23.
var HourOptions = func() []string {
	out := make([]string, 24)
	for h := range out {
		out[h] = fmt.Sprintf("%02d", h)
	}
	return out
}()

// NotifyTime is the daily notification time of day.
type NotifyTime struct {
	Hour   int
	Minute int
}

// ParseNotifyTime parses "HH:MM" and enforces the selectable options.
func ParseNotifyTime(s string) (NotifyTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return NotifyTime{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if !IsHourOption(hh) {
		return NotifyTime{}, fmt.Errorf("invalid hour %q", hh)
	}
	if !IsMinuteOption(mm) {
		return NotifyTime{}, fmt.Errorf("invalid minute %q", mm)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return NotifyTime{Hour: h, Minute: m}, nil
}

// IsHourOption reports whether s is one of HourOptions.
func IsHourOption(s string) bool { return slices.Contains(HourOptions, s) }

// IsMinuteOption reports whether s is one of MinuteOptions.
func IsMinuteOption(s string) bool { return slices.Contains(MinuteOptions, s) }

// HourString returns the zero-padded hour.
func (t NotifyTime) HourString() string { return fmt.Sprintf("%02d", t.Hour) }

// MinuteString returns the zero-padded minute.
func (t NotifyTime) MinuteString() string { return fmt.Sprintf("%02d", t.Minute) }

// String renders the wire format "HH:MM".
func (t NotifyTime) String() string { return t.HourString() + ":" + t.MinuteString() }
