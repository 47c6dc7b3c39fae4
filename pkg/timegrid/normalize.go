package timegrid

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInterval = errors.New("interval end must be after start")

	ErrInvalidWeeklyEntry = errors.New("weekly entry out of range")
)

// Interval is one user's availability window: a half-open [Start, End) span of
// absolute instants.
type Interval struct {
	UserID string
	Start  time.Time
	End    time.Time
}

// KeySet is an order-independent set of grid keys.
type KeySet map[Key]struct{}

func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Equal reports whether both sets contain exactly the same keys.
func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// WeeklyEntry is a recurring availability preference: day 0-6 (0 = Sunday)
// and hour 0-23, timezone-agnostic until projected onto a concrete week.
type WeeklyEntry struct {
	Day  int
	Hour int
}

// IntervalKeys converts explicit intervals into the set of grid keys they
// cover in loc. Each interval is walked from Start to End in 1-hour steps
// aligned to Start, so an interval of exactly n hours yields n keys and no key
// is emitted for the End instant itself. Malformed intervals (End <= Start)
// are rejected before any key is produced.
func IntervalKeys(intervals []Interval, loc *time.Location) (KeySet, error) {
	for _, iv := range intervals {
		if !iv.End.After(iv.Start) {
			return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval,
				iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
		}
	}

	keys := make(KeySet)
	for _, iv := range intervals {
		for t := iv.Start; t.Before(iv.End); t = t.Add(time.Hour) {
			keys.Add(KeyAt(t, loc))
		}
	}
	return keys, nil
}

// DefaultKeys projects recurring weekly entries onto the week that begins at
// startOfWeek. The caller supplies startOfWeek as midnight Sunday in the
// viewer's local calendar; this function does not compute week boundaries.
func DefaultKeys(entries []WeeklyEntry, startOfWeek time.Time, loc *time.Location) (KeySet, error) {
	for _, e := range entries {
		if e.Day < 0 || e.Day > 6 || e.Hour < 0 || e.Hour > 23 {
			return nil, fmt.Errorf("%w: day=%d hour=%d", ErrInvalidWeeklyEntry, e.Day, e.Hour)
		}
	}

	sow := startOfWeek.In(loc)
	keys := make(KeySet)
	for _, e := range entries {
		local := time.Date(sow.Year(), sow.Month(), sow.Day()+e.Day, e.Hour, 0, 0, 0, loc)
		keys.Add(KeyAt(local, loc))
	}
	return keys, nil
}
