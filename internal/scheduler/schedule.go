package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
)

// Mode selects how the migration is triggered.
type Mode string

const (
	ModeManual   Mode = "manual"
	ModeDaily    Mode = "diario"
	ModeInterval Mode = "por_intervalo"
)

// Modes lists the accepted values of Mode.
var Modes = []Mode{ModeManual, ModeDaily, ModeInterval}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// NeedsTime reports whether the mode requires a HH:MM argument.
func (m Mode) NeedsTime() bool {
	return m == ModeDaily || m == ModeInterval
}

// ErrInvalidTime is returned for malformed or out-of-range HH:MM values.
var ErrInvalidTime = errors.New("invalid time, expected HH:MM")

// TimeOfDay is a wall-clock time with minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" on a 24-hour clock.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, err := splitHHMM(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	if h > 23 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// ParseInterval parses a duration written as "HH:MM". Hours are not bounded
// by 24; the result must be positive.
func ParseInterval(s string) (time.Duration, error) {
	h, m, err := splitHHMM(s)
	if err != nil {
		return 0, err
	}
	if m > 59 {
		return 0, fmt.Errorf("%w: %q minutes out of range", ErrInvalidTime, s)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive interval", ErrInvalidTime, s)
	}
	return d, nil
}

// FormatInterval renders d back as HH:MM.
func FormatInterval(d time.Duration) string {
	mins := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func splitHHMM(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := component(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidTime, s, err)
	}
	m, err := component(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidTime, s, err)
	}
	return h, m, nil
}

func component(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
	}
	// cast parses with base prefix detection; "08" would be read as octal.
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return 0, nil
	}
	return cast.ToIntE(trimmed)
}

// NextDaily returns the next occurrence of hour:minute in now's location. A
// time-of-day that has already passed today yields tomorrow's occurrence.
func NextDaily(now time.Time, hour, minute int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(target) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// dailySchedule aligns the first activation to the wall clock and then fires
// every 24 hours measured from the end of the previous pass. Drift is not
// corrected after the first alignment.
type dailySchedule struct {
	at      TimeOfDay
	aligned bool
}

// NewDailySchedule returns a cron.Schedule for daily mode.
func NewDailySchedule(at TimeOfDay) cron.Schedule {
	return &dailySchedule{at: at}
}

func (s *dailySchedule) Next(t time.Time) time.Time {
	if !s.aligned {
		s.aligned = true
		return NextDaily(t, s.at.Hour, s.at.Minute)
	}
	return t.Add(24 * time.Hour)
}

// intervalSchedule fires exactly every after the previous pass ended.
type intervalSchedule struct {
	every time.Duration
}

// NewIntervalSchedule returns a cron.Schedule for interval mode. Unlike
// cron.Every it keeps sub-second offsets, so the wait is exactly every.
func NewIntervalSchedule(every time.Duration) cron.Schedule {
	return intervalSchedule{every: every}
}

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.every)
}
