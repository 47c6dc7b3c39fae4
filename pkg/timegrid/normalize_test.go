package timegrid

import (
	"errors"
	"testing"
	"time"
)

func TestIntervalKeys_OneKeyPerWholeHour(t *testing.T) {
	loc := mustLoc(t, "UTC")
	start := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

	for _, hours := range []int{1, 2, 5, 24} {
		iv := Interval{UserID: "u1", Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
		keys, err := IntervalKeys([]Interval{iv}, loc)
		if err != nil {
			t.Fatalf("%dh interval: unexpected error: %v", hours, err)
		}
		if len(keys) != hours {
			t.Errorf("%dh interval: got %d keys, want %d", hours, len(keys), hours)
		}
		for k := range keys {
			decoded := k.Time(loc)
			if decoded.Before(iv.Start) || !decoded.Before(iv.End) {
				t.Errorf("%dh interval: key %v decodes to %s outside [start, end)", hours, k, decoded)
			}
		}
	}
}

func TestIntervalKeys_HalfOpenEnd(t *testing.T) {
	loc := mustLoc(t, "UTC")
	start := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	keys, err := IntervalKeys([]Interval{{UserID: "u1", Start: start, End: end}}, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys.Has(KeyAt(end, loc)) {
		t.Error("key for the end instant must not be emitted")
	}
	if !keys.Has(KeyAt(start, loc)) {
		t.Error("key for the start instant is missing")
	}
}

func TestIntervalKeys_StepsAlignToStartNotWallClock(t *testing.T) {
	loc := mustLoc(t, "UTC")
	// Starts mid-hour; the emitted keys come from instants 09:30 and 10:30,
	// which truncate to the 09 and 10 cells.
	start := time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	keys, err := IntervalKeys([]Interval{{UserID: "u1", Start: start, End: end}}, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	for _, want := range []Key{{2025, 5, 12, 9}, {2025, 5, 12, 10}} {
		if !keys.Has(want) {
			t.Errorf("missing key %v", want)
		}
	}
}

func TestIntervalKeys_RejectsMalformedInterval(t *testing.T) {
	loc := mustLoc(t, "UTC")
	at := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

	tests := []Interval{
		{UserID: "u1", Start: at, End: at},
		{UserID: "u1", Start: at, End: at.Add(-time.Hour)},
	}
	for _, iv := range tests {
		if _, err := IntervalKeys([]Interval{iv}, loc); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("interval [%s, %s): got %v, want ErrInvalidInterval", iv.Start, iv.End, err)
		}
	}
}

func TestIntervalKeys_Deterministic(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	intervals := []Interval{
		{UserID: "u1", Start: time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 5, 12, 11, 0, 0, 0, time.UTC)},
		{UserID: "u1", Start: time.Date(2025, 5, 13, 20, 0, 0, 0, time.UTC), End: time.Date(2025, 5, 13, 21, 0, 0, 0, time.UTC)},
	}

	first, err := IntervalKeys(intervals, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reversed := []Interval{intervals[1], intervals[0]}
	second, err := IntervalKeys(reversed, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Equal(second) {
		t.Error("same intervals in different order produced different key sets")
	}
}

func TestDefaultKeys_ProjectsOntoWeek(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// Sunday 2025-06-01, local midnight.
	startOfWeek := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)

	entries := []WeeklyEntry{
		{Day: 0, Hour: 9},  // Sunday 09:00
		{Day: 3, Hour: 18}, // Wednesday 18:00
		{Day: 6, Hour: 23}, // Saturday 23:00
	}

	keys, err := DefaultKeys(entries, startOfWeek, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Key{
		{2025, 6, 1, 9},
		{2025, 6, 4, 18},
		{2025, 6, 7, 23},
	}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for _, k := range want {
		if !keys.Has(k) {
			t.Errorf("missing key %v", k)
		}
	}
}

func TestDefaultKeys_RejectsOutOfRangeEntries(t *testing.T) {
	loc := mustLoc(t, "UTC")
	sow := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	bad := []WeeklyEntry{{Day: 7, Hour: 0}, {Day: -1, Hour: 0}, {Day: 0, Hour: 24}, {Day: 0, Hour: -1}}
	for _, e := range bad {
		if _, err := DefaultKeys([]WeeklyEntry{e}, sow, loc); !errors.Is(err, ErrInvalidWeeklyEntry) {
			t.Errorf("entry %+v: got %v, want ErrInvalidWeeklyEntry", e, err)
		}
	}
}

func TestKeySet_Equal(t *testing.T) {
	a := KeySet{{2025, 1, 1, 0}: {}, {2025, 1, 1, 1}: {}}
	b := KeySet{{2025, 1, 1, 1}: {}, {2025, 1, 1, 0}: {}}
	c := KeySet{{2025, 1, 1, 0}: {}}

	if !a.Equal(b) {
		t.Error("sets with the same keys must be equal regardless of order")
	}
	if a.Equal(c) {
		t.Error("sets of different size must not be equal")
	}
}
