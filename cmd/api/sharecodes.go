package main

import (
	"errors"
	"net/http"

	"advisoret/internal/store"

	"github.com/go-chi/chi/v5"
)

// encodeShareCode turns a venue id into the short code used in deep
// links shared from the app.
func (app *application) encodeShareCode(venueID int64) string {
	code, err := app.shareCodes.EncodeInt64([]int64{venueID})
	if err != nil {
		return ""
	}
	return code
}

func (app *application) decodeShareCode(code string) (int64, error) {
	ids, err := app.shareCodes.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, errors.New("invalid share code")
	}
	return ids[0], nil
}

// resolveShareCodeHandler resolves a shared deep-link code back to its
// venue.
func (app *application) resolveShareCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	venueID, err := app.decodeShareCode(code)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, venue)
}
