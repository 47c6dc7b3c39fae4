// Package timegrid implements the availability grid used to line up
// participants across timezones: a canonical hour-cell key, normalization of
// raw interval and recurring-weekly records into key sets, aggregation of many
// users' sets into a headcount grid, and selection of the best shared slot.
//
// Everything in this package is pure: no I/O, no shared state, safe for
// concurrent use.
package timegrid

import (
	"fmt"
	"time"
)

// Key identifies one 1-hour cell in a specific IANA timezone's local calendar.
// Two instants falling in the same local hour produce the same Key; the same
// instant produces different Keys under different timezones.
type Key struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// KeyAt projects an absolute instant into loc's local calendar and truncates
// to the hour. Conversion goes through *time.Location, so DST offsets are
// applied per the IANA database rather than a fixed offset.
func KeyAt(t time.Time, loc *time.Location) Key {
	local := t.In(loc)
	return Key{
		Year:  local.Year(),
		Month: int(local.Month()),
		Day:   local.Day(),
		Hour:  local.Hour(),
	}
}

// Time returns the instant at which the key's local hour begins in loc.
// For local times that are skipped or repeated across a DST transition this
// follows the normalization rule of time.Date: nonexistent times roll forward
// into the gap's other side, ambiguous times resolve to the earlier offset.
func (k Key) Time(loc *time.Location) time.Time {
	return time.Date(k.Year, time.Month(k.Month), k.Day, k.Hour, 0, 0, 0, loc)
}

// String renders the key in its wire form "YYYY-MM-DD-HH", hour zero-padded.
// The string form is a lookup key only; persisted state always stores concrete
// instants plus a timezone.
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d-%02d-%02d", k.Year, k.Month, k.Day, k.Hour)
}

// ParseKey is the inverse of String.
func ParseKey(s string) (Key, error) {
	var k Key
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d-%2d", &k.Year, &k.Month, &k.Day, &k.Hour); err != nil {
		return Key{}, fmt.Errorf("malformed grid key %q: %w", s, err)
	}
	if len(s) != 13 {
		return Key{}, fmt.Errorf("malformed grid key %q: want YYYY-MM-DD-HH", s)
	}
	if k.Month < 1 || k.Month > 12 || k.Day < 1 || k.Day > 31 || k.Hour < 0 || k.Hour > 23 {
		return Key{}, fmt.Errorf("grid key %q out of range", s)
	}
	return k, nil
}
