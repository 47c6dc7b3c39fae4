package timegrid

import (
	"testing"
	"time"
)

func TestAggregate_OverlappingUsersAcrossTimezones(t *testing.T) {
	// Three users in Tokyo, Los Angeles and New York submit the same
	// 13:00-14:00 UTC window; the grid must collapse them into a single cell
	// with headcount 3 in any reference timezone.
	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	intervals := []Interval{
		{UserID: "tokyo", Start: start, End: end},
		{UserID: "la", Start: start, End: end},
		{UserID: "ny", Start: start, End: end},
	}

	for _, tz := range []string{"Asia/Tokyo", "America/Los_Angeles", "America/New_York", "UTC"} {
		loc := mustLoc(t, tz)
		grid, err := Aggregate(intervals, loc)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tz, err)
		}
		if len(grid) != 1 {
			t.Fatalf("%s: got %d cells, want 1", tz, len(grid))
		}
		for k := range grid {
			if grid.Headcount(k) != 3 {
				t.Errorf("%s: headcount = %d, want 3", tz, grid.Headcount(k))
			}
		}
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	loc := mustLoc(t, "UTC")
	mk := func(user string, day, hour int) Interval {
		start := time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
		return Interval{UserID: user, Start: start, End: start.Add(time.Hour)}
	}
	intervals := []Interval{
		mk("a", 2, 9), mk("a", 2, 10),
		mk("b", 2, 9), mk("b", 3, 14),
		mk("c", 3, 14),
	}

	forward, err := Aggregate(intervals, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reversed := make([]Interval, len(intervals))
	for i, iv := range intervals {
		reversed[len(intervals)-1-i] = iv
	}
	backward, err := Aggregate(reversed, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(forward) != len(backward) {
		t.Fatalf("cell counts differ: %d vs %d", len(forward), len(backward))
	}
	for k, users := range forward {
		other, ok := backward[k]
		if !ok {
			t.Errorf("cell %v missing from reversed aggregation", k)
			continue
		}
		if len(users) != len(other) {
			t.Errorf("cell %v: headcount %d vs %d", k, len(users), len(other))
			continue
		}
		for i := range users {
			if users[i] != other[i] {
				t.Errorf("cell %v: user lists differ: %v vs %v", k, users, other)
				break
			}
		}
	}
}

func TestAggregate_DuplicateSubmissionsCountOnce(t *testing.T) {
	loc := mustLoc(t, "UTC")
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// One user's overlapping intervals cover the same hour twice.
	intervals := []Interval{
		{UserID: "u1", Start: start, End: start.Add(time.Hour)},
		{UserID: "u1", Start: start, End: start.Add(2 * time.Hour)},
	}

	grid, err := Aggregate(intervals, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := grid.Headcount(Key{2025, 6, 2, 9}); got != 1 {
		t.Errorf("headcount for doubly-covered cell = %d, want 1", got)
	}
}

func TestAggregate_PropagatesValidationError(t *testing.T) {
	loc := mustLoc(t, "UTC")
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	_, err := Aggregate([]Interval{{UserID: "u1", Start: at, End: at}}, loc)
	if err == nil {
		t.Fatal("expected error for zero-length interval")
	}
}

func TestAggregate_Empty(t *testing.T) {
	grid, err := Aggregate(nil, mustLoc(t, "UTC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("empty input produced %d cells", len(grid))
	}
}
