package timegrid

import (
	"sort"
	"time"
)

// Candidate is the outcome of slot selection: the winning cell, the absolute
// instant its hour begins, and who is available there.
type Candidate struct {
	Key       Key
	Start     time.Time
	Headcount int
	UserIDs   []string
}

// BestSlot picks the strongest cell within the 7-day window starting at
// weekStart: highest headcount first, earliest absolute instant on ties.
// The tie-break compares decoded instants rather than key strings, so it stays
// correct even if the grid ever mixes keys decoded under different timezones.
// Returns false when no cell of the grid falls inside the window.
func BestSlot(grid Grid, weekStart time.Time, loc *time.Location) (Candidate, bool) {
	weekEnd := weekStart.Add(7 * 24 * time.Hour)

	var candidates []Candidate
	for k, users := range grid {
		start := k.Time(loc)
		if start.Before(weekStart) || !start.Before(weekEnd) {
			continue
		}
		candidates = append(candidates, Candidate{
			Key:       k,
			Start:     start,
			Headcount: len(users),
			UserIDs:   users,
		})
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Headcount != candidates[j].Headcount {
			return candidates[i].Headcount > candidates[j].Headcount
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})
	return candidates[0], true
}
