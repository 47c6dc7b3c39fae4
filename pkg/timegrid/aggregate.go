package timegrid

import (
	"sort"
	"time"
)

// Grid maps each hour cell to the ids of the users available there.
type Grid map[Key][]string

// Headcount returns the number of distinct users available at k.
func (g Grid) Headcount(k Key) int {
	return len(g[k])
}

// Aggregate merges all users' intervals into a headcount grid for loc.
// Intervals are normalized per user first, so a user whose submitted intervals
// overlap the same hour contributes once to that cell, not twice. The result
// is independent of input order; user ids within a cell are sorted.
//
// Recomputed in full on every call. Expected cardinality is one event with
// tens of participants, so no incremental index is kept.
func Aggregate(intervals []Interval, loc *time.Location) (Grid, error) {
	byUser := make(map[string][]Interval)
	for _, iv := range intervals {
		byUser[iv.UserID] = append(byUser[iv.UserID], iv)
	}

	grid := make(Grid)
	for userID, ivs := range byUser {
		keys, err := IntervalKeys(ivs, loc)
		if err != nil {
			return nil, err
		}
		for k := range keys {
			grid[k] = append(grid[k], userID)
		}
	}

	for k := range grid {
		sort.Strings(grid[k])
	}
	return grid, nil
}
