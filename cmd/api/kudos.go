package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// toggleKudosHandler flips the caller's kudos on a rating. Giving
// kudos twice removes it, so the client can use a single endpoint for
// both actions.
func (app *application) toggleKudosHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := strconv.ParseInt(chi.URLParam(r, "ratingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid rating ID"))
		return
	}

	user := getUserFromContext(r)

	added, err := app.store.Kudos.Toggle(r.Context(), user.ID, ratingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if app.counts != nil {
		app.counts.InvalidateKudos(r.Context(), ratingID)
	}

	count, err := app.store.Kudos.Count(r.Context(), ratingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"has_kudos":   added,
		"kudos_count": count,
	})
}

func (app *application) getKudosHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := strconv.ParseInt(chi.URLParam(r, "ratingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid rating ID"))
		return
	}

	user := getUserFromContext(r)

	counts, err := app.kudosCounts(r, []int64{ratingID})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	hasKudos, err := app.store.Kudos.HasKudos(r.Context(), user.ID, ratingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"has_kudos":   hasKudos,
		"kudos_count": counts[ratingID],
	})
}

// kudosCounts resolves kudos counts for a set of ratings, serving from
// Redis when a cached value exists and falling back to Postgres for
// the rest. Cache misses are written back with a short TTL.
func (app *application) kudosCounts(r *http.Request, ratingIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ratingIDs))
	missing := ratingIDs

	if app.counts != nil {
		missing = make([]int64, 0, len(ratingIDs))
		for _, id := range ratingIDs {
			if n, ok := app.counts.GetKudosCount(r.Context(), id); ok {
				counts[id] = n
			} else {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) == 0 {
		return counts, nil
	}

	fresh, err := app.store.Kudos.CountMany(r.Context(), missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		n := fresh[id]
		counts[id] = n
		if app.counts != nil {
			app.counts.SetKudosCount(r.Context(), id, n)
		}
	}

	return counts, nil
}
