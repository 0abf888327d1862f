package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"advisoret/internal/ranking"
	"advisoret/internal/store"

	"github.com/go-chi/chi/v5"
)

type criterionScorePayload struct {
	CriterionID int64 `json:"criterion_id" validate:"required"`
	Score       int   `json:"score" validate:"required"`
}

type createRatingPayload struct {
	Scores  []criterionScorePayload `json:"scores" validate:"required,min=1,dive"`
	Comment *string                 `json:"comment" validate:"omitempty,max=500"`
	Price   *float64                `json:"price" validate:"omitempty,gt=0"`
}

// createVenueRatingHandler creates or updates the caller's rating of a
// venue for the current calendar month. The month window is computed
// once and reused for both the lookup and the insert, and a uniqueness
// conflict from a concurrent insert is converted into an update.
func (app *application) createVenueRatingHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createRatingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if _, err := app.store.Venues.GetByID(r.Context(), venueID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	scores := make([]store.CriterionScore, 0, len(payload.Scores))
	var sum int
	for _, s := range payload.Scores {
		clamped := ranking.ClampScore(s.Score)
		scores = append(scores, store.CriterionScore{CriterionID: s.CriterionID, Score: clamped})
		sum += clamped
	}
	overall := float64(sum) / float64(len(scores))

	rating := &store.Rating{
		VenueID: venueID,
		UserID:  user.ID,
		Overall: overall,
		Comment: payload.Comment,
		Price:   payload.Price,
		Scores:  scores,
	}

	start, end := ranking.MonthWindow(time.Now())

	existing, err := app.store.Ratings.GetForMonth(r.Context(), user.ID, venueID, start, end)
	switch {
	case err == nil:
		rating.ID = existing.ID
		if err := app.store.Ratings.Update(r.Context(), rating); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		app.jsonResponse(w, http.StatusOK, rating)
		return
	case errors.Is(err, store.ErrNotFound):
		// fall through to insert
	default:
		app.internalServerError(w, r, err)
		return
	}

	err = app.store.Ratings.Create(r.Context(), rating)
	if errors.Is(err, store.ErrConflict) {
		// Lost the race with another device: re-fetch and update instead.
		existing, ferr := app.store.Ratings.GetForMonth(r.Context(), user.ID, venueID, start, end)
		if ferr != nil {
			app.internalServerError(w, r, ferr)
			return
		}
		rating.ID = existing.ID
		if err := app.store.Ratings.Update(r.Context(), rating); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		app.jsonResponse(w, http.StatusOK, rating)
		return
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, rating)
}

// getVenueRatingsHandler lists a venue's ratings with author info and
// kudos counts.
func (app *application) getVenueRatingsHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	ratings, err := app.store.Ratings.ListByVenue(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ids := make([]int64, 0, len(ratings))
	for _, rt := range ratings {
		ids = append(ids, rt.ID)
	}
	counts, err := app.kudosCounts(r, ids)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	type ratingWithKudos struct {
		store.Rating
		KudosCount int `json:"kudos_count"`
	}

	out := make([]ratingWithKudos, 0, len(ratings))
	for _, rt := range ratings {
		out = append(out, ratingWithKudos{Rating: rt, KudosCount: counts[rt.ID]})
	}

	app.jsonResponse(w, http.StatusOK, out)
}

func (app *application) deleteRatingHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := strconv.ParseInt(chi.URLParam(r, "ratingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid rating ID"))
		return
	}

	user := getUserFromContext(r)

	if err := app.store.Ratings.Delete(r.Context(), ratingID, user.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "rating deleted"})
}

// listCriteriaHandler returns the fixed scoring dimensions for a
// product type, in form order.
func (app *application) listCriteriaHandler(w http.ResponseWriter, r *http.Request) {
	productType := chi.URLParam(r, "productType")

	criteria, err := app.store.Ratings.ListCriteria(r.Context(), productType)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, criteria)
}
