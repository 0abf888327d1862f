// Package ranking holds the pure pieces of the monthly ranking pipeline:
// the UTC month window shared by the read and write paths, score
// clamping, and the fallback aggregation used when the precomputed view
// is unavailable.
package ranking

import (
	"sort"
	"time"
)

// MinScore and MaxScore bound every per-criterion score.
const (
	MinScore = 1
	MaxScore = 5
)

// ClampScore maps any input into the closed range [MinScore, MaxScore].
func ClampScore(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// MonthWindow returns the half-open UTC interval [start, end) of the
// calendar month containing now. Both the rating write path and the
// ranking read path use the same window, so the "one rating per venue
// per month" edit window always lines up with the display window.
func MonthWindow(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// InWindow reports whether t falls inside [start, end). A timestamp
// exactly at end is excluded.
func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// Entry is one rating's contribution to the monthly aggregation.
type Entry struct {
	VenueID   int64
	Score     float64
	CreatedAt time.Time
}

// VenueAverage is the aggregated result for one venue.
type VenueAverage struct {
	VenueID int64
	Average float64
	Count   int
}

// Aggregate groups entries created inside [start, end) by venue,
// computes the arithmetic mean and count per venue, and returns the
// venues sorted by mean descending. Plain floating-point averaging; no
// tie-breaking contract beyond sort stability.
func Aggregate(entries []Entry, start, end time.Time) []VenueAverage {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	order := make([]int64, 0)

	for _, e := range entries {
		if !InWindow(e.CreatedAt, start, end) {
			continue
		}
		if _, seen := counts[e.VenueID]; !seen {
			order = append(order, e.VenueID)
		}
		sums[e.VenueID] += e.Score
		counts[e.VenueID]++
	}

	out := make([]VenueAverage, 0, len(order))
	for _, id := range order {
		out = append(out, VenueAverage{
			VenueID: id,
			Average: sums[id] / float64(counts[id]),
			Count:   counts[id],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Average > out[j].Average
	})
	return out
}
