package main

import (
	"net/http"
	"time"

	"advisoret/internal/ranking"
)

type monthlyRankingEntry struct {
	VenueID  int64   `json:"venue_id"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	CoverURL *string `json:"cover_image_url"`
	Average  float64 `json:"average"`
	Count    int     `json:"rating_count"`
}

// monthlyRankingHandler ranks venues by their plain average score over
// the current calendar month. Venues whose details cannot be hydrated
// are dropped from the response rather than returned half-empty.
func (app *application) monthlyRankingHandler(w http.ResponseWriter, r *http.Request) {
	start, end := ranking.MonthWindow(time.Now())

	entries, err := app.store.Ratings.MonthEntries(r.Context(), start, end)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	averages := ranking.Aggregate(entries, start, end)

	ids := make([]int64, 0, len(averages))
	for _, avg := range averages {
		ids = append(ids, avg.VenueID)
	}

	venues, err := app.store.Rankings.HydrateVenues(r.Context(), ids)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	out := make([]monthlyRankingEntry, 0, len(averages))
	for _, avg := range averages {
		v, ok := venues[avg.VenueID]
		if !ok {
			continue
		}
		out = append(out, monthlyRankingEntry{
			VenueID:  avg.VenueID,
			Name:     v.Name,
			City:     v.City,
			CoverURL: v.CoverImageURL,
			Average:  avg.Average,
			Count:    avg.Count,
		})
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"month_start": start,
		"month_end":   end,
		"rankings":    out,
	})
}

// bayesianRankingHandler serves the all-time leaderboard backed by the
// venue_rankings view, which weights averages by rating volume.
func (app *application) bayesianRankingHandler(w http.ResponseWriter, r *http.Request) {
	limit := readInt(r.URL.Query().Get("limit"), 50)

	rankings, err := app.store.Rankings.ListBayesian(r.Context(), limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, rankings)
}
