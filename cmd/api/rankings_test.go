package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"advisoret/internal/ranking"
	"advisoret/internal/store"

	"go.uber.org/zap"
)

type stubRatings struct {
	entries []ranking.Entry
}

func (s *stubRatings) ListCriteria(ctx context.Context, productType string) ([]store.Criterion, error) {
	return nil, nil
}
func (s *stubRatings) GetForMonth(ctx context.Context, userID, venueID int64, start, end time.Time) (*store.Rating, error) {
	return nil, store.ErrNotFound
}
func (s *stubRatings) Create(ctx context.Context, r *store.Rating) error     { return nil }
func (s *stubRatings) Update(ctx context.Context, r *store.Rating) error     { return nil }
func (s *stubRatings) Delete(ctx context.Context, ratingID, userID int64) error { return nil }
func (s *stubRatings) ListByVenue(ctx context.Context, venueID int64) ([]store.Rating, error) {
	return nil, nil
}
func (s *stubRatings) MonthEntries(ctx context.Context, start, end time.Time) ([]ranking.Entry, error) {
	return s.entries, nil
}

type stubRankings struct {
	venues map[int64]store.VenueSummary
}

func (s *stubRankings) ListBayesian(ctx context.Context, limit int) ([]store.BayesianRanking, error) {
	return nil, nil
}
func (s *stubRankings) HydrateVenues(ctx context.Context, ids []int64) (map[int64]store.VenueSummary, error) {
	return s.venues, nil
}

func TestMonthlyRankingFiltersAndHydrates(t *testing.T) {
	start, _ := ranking.MonthWindow(time.Now())
	lastMonth := start.AddDate(0, 0, -1)

	app := &application{
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Ratings: &stubRatings{entries: []ranking.Entry{
				{VenueID: 1, Score: 4, CreatedAt: start.Add(time.Hour)},
				{VenueID: 1, Score: 2, CreatedAt: start.Add(2 * time.Hour)},
				{VenueID: 2, Score: 5, CreatedAt: start.Add(time.Hour)},
				// Outside the window: must not drag venue 1 down.
				{VenueID: 1, Score: 1, CreatedAt: lastMonth},
				// Hydration misses venue 3: it must be dropped.
				{VenueID: 3, Score: 5, CreatedAt: start.Add(time.Hour)},
			}},
			Rankings: &stubRankings{venues: map[int64]store.VenueSummary{
				1: {ID: 1, Name: "Horchateria Sol", City: "Valencia"},
				2: {ID: 2, Name: "Casa Pepe", City: "Alicante"},
			}},
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/monthly", nil)

	app.monthlyRankingHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Data struct {
			Rankings []monthlyRankingEntry `json:"rankings"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	got := resp.Data.Rankings
	if len(got) != 2 {
		t.Fatalf("got %d ranked venues, want 2", len(got))
	}
	if got[0].VenueID != 2 {
		t.Errorf("first place venue = %d, want 2", got[0].VenueID)
	}
	if got[1].VenueID != 1 || got[1].Average != 3 || got[1].Count != 2 {
		t.Errorf("venue 1 aggregate = avg %f count %d, want avg 3 count 2 (prior-month entry excluded)",
			got[1].Average, got[1].Count)
	}
}
