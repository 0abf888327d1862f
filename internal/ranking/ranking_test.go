package ranking

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestClampScore(t *testing.T) {
	cases := []struct{ in, want int }{
		{-3, 1},
		{0, 1},
		{1, 1},
		{3, 3},
		{5, 5},
		{6, 5},
		{100, 5},
	}
	for _, c := range cases {
		if got := ClampScore(c.in); got != c.want {
			t.Errorf("ClampScore(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMonthWindowBounds(t *testing.T) {
	now := time.Date(2025, time.March, 17, 14, 5, 0, 0, time.UTC)
	start, end := MonthWindow(now)

	if !start.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}

func TestMonthWindowNormalizesZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:00 on Jan 1 at UTC+5 is still Dec 31 in UTC.
	now := time.Date(2025, time.January, 1, 2, 0, 0, 0, loc)
	start, _ := MonthWindow(now)

	if start.Month() != time.December || start.Year() != 2024 {
		t.Fatalf("start = %v, want December 2024", start)
	}
}

func TestInWindowHalfOpen(t *testing.T) {
	start, end := MonthWindow(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))

	if !InWindow(start, start, end) {
		t.Error("timestamp at start should be included")
	}
	if InWindow(end, start, end) {
		t.Error("timestamp exactly at end should be excluded")
	}
	if InWindow(end.Add(-time.Nanosecond), start, end) != true {
		t.Error("timestamp just before end should be included")
	}
}

func TestAggregateMeansAndOrder(t *testing.T) {
	start, end := MonthWindow(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	in := start.Add(time.Hour)

	entries := []Entry{
		{VenueID: 1, Score: 4, CreatedAt: in},
		{VenueID: 1, Score: 5, CreatedAt: in},
		{VenueID: 2, Score: 5, CreatedAt: in},
		{VenueID: 3, Score: 2, CreatedAt: in},
		{VenueID: 3, Score: 3, CreatedAt: in},
		{VenueID: 3, Score: 4, CreatedAt: in},
	}

	got := Aggregate(entries, start, end)
	if len(got) != 3 {
		t.Fatalf("got %d venues, want 3", len(got))
	}
	if got[0].VenueID != 2 || !almostEqual(got[0].Average, 5) {
		t.Fatalf("top venue = %+v, want venue 2 avg 5", got[0])
	}
	if got[1].VenueID != 1 || !almostEqual(got[1].Average, 4.5) || got[1].Count != 2 {
		t.Fatalf("second venue = %+v, want venue 1 avg 4.5 count 2", got[1])
	}
	if got[2].VenueID != 3 || !almostEqual(got[2].Average, 3) || got[2].Count != 3 {
		t.Fatalf("third venue = %+v, want venue 3 avg 3 count 3", got[2])
	}
}

func TestAggregateExcludesOutOfWindow(t *testing.T) {
	start, end := MonthWindow(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))

	entries := []Entry{
		{VenueID: 1, Score: 5, CreatedAt: start.Add(time.Hour)},
		{VenueID: 1, Score: 1, CreatedAt: end},                      // exactly at end: excluded
		{VenueID: 2, Score: 5, CreatedAt: start.Add(-time.Minute)},  // previous month
		{VenueID: 3, Score: 5, CreatedAt: end.Add(time.Hour)},       // next month
	}

	got := Aggregate(entries, start, end)
	if len(got) != 1 {
		t.Fatalf("got %d venues, want 1", len(got))
	}
	if got[0].VenueID != 1 || !almostEqual(got[0].Average, 5) || got[0].Count != 1 {
		t.Fatalf("got %+v", got[0])
	}
}

func TestAggregateEmpty(t *testing.T) {
	start, end := MonthWindow(time.Now())
	if got := Aggregate(nil, start, end); len(got) != 0 {
		t.Fatalf("got %d venues, want 0", len(got))
	}
}
