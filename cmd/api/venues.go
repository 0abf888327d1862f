package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"advisoret/internal/geo"
	"advisoret/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

// nearbyPoolSize caps how many venue rows feed the haversine ranking.
const nearbyPoolSize = 200

// nearbyResultSize is how many ranked venues the nearby screen shows.
const nearbyResultSize = 10

// listVenuesHandler godoc
//
//	@Summary	List approved venues
//	@Tags		venues
//	@Param		city	query	string	false	"filter by city"
//	@Param		q		query	string	false	"name search"
//	@Router		/venues [get]
func (app *application) listVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.VenueFilter{
		City:   strings.TrimSpace(q.Get("city")),
		Search: strings.TrimSpace(q.Get("q")),
		Page:   readInt(q.Get("page"), 1),
		Limit:  readInt(q.Get("limit"), 20),
	}

	venues, err := app.store.Venues.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, venues)
}

func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
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

	total, average, err := app.store.Venues.GetRatingStats(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"venue":         venue,
		"total_ratings": total,
		"average":       math.Round(average*10) / 10,
		"share_code":    app.encodeShareCode(venue.ID),
	}
	app.jsonResponse(w, http.StatusOK, resp)
}

type nearbyVenue struct {
	store.Venue
	DistanceKm    float64 `json:"distance_km"`
	DistanceLabel string  `json:"distance_label"`
}

// nearbyVenuesHandler ranks a bounded pool of venues by haversine
// distance from the caller's coordinate. Clients without a location
// never call this route; they show the location-disabled state instead.
func (app *application) nearbyVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		app.badRequestResponse(w, r, errors.New("lat and lng are required"))
		return
	}

	venues, err := app.store.Venues.ListWithCoordinates(r.Context(), nearbyPoolSize)
	if err != nil {
		// The nearby screen degrades to an empty list rather than an error.
		app.logger.Errorw("nearby venues load failed", "error", err)
		app.jsonResponse(w, http.StatusOK, []nearbyVenue{})
		return
	}

	ranked := geo.Nearest(geo.NewPoint(lat, lng), venues, nearbyResultSize)

	out := make([]nearbyVenue, 0, len(ranked))
	for _, rv := range ranked {
		out = append(out, nearbyVenue{
			Venue:         rv.Item,
			DistanceKm:    rv.DistanceKm,
			DistanceLabel: geo.FormatDistance(rv.DistanceKm),
		})
	}

	app.jsonResponse(w, http.StatusOK, out)
}

type updateVenuePayload struct {
	Name      *string  `json:"name" validate:"omitempty,max=150"`
	City      *string  `json:"city" validate:"omitempty,max=100"`
	Address   *string  `json:"address" validate:"omitempty,max=250"`
	MapURL    *string  `json:"map_url" validate:"omitempty,url"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Approved  *bool    `json:"approved"`
	Awarded   *bool    `json:"awarded"`
}

// updateVenueHandler applies an admin's partial edit.
func (app *application) updateVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload updateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.MapURL != nil {
		updates["map_url"] = *payload.MapURL
	}
	if payload.Latitude != nil {
		updates["latitude"] = *payload.Latitude
	}
	if payload.Longitude != nil {
		updates["longitude"] = *payload.Longitude
	}
	if payload.Approved != nil {
		updates["approved"] = *payload.Approved
	}
	if payload.Awarded != nil {
		updates["awarded"] = *payload.Awarded
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("nothing to update"))
		return
	}

	if err := app.store.Venues.Update(r.Context(), venueID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "venue updated"})
}

// uploadVenueCoverHandler replaces the venue's cover image.
func (app *application) uploadVenueCoverHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil { // 5 MB
		app.badRequestResponse(w, r, errors.New("unable to parse form, file size limit is 5MB"))
		return
	}

	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to retrieve file"))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, errors.New("only JPEG and PNG images are allowed"))
		return
	}

	if _, err := app.store.Venues.GetByID(r.Context(), venueID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	resp, err := app.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		PublicID:       strconv.FormatInt(venueID, 10),
		Overwrite:      boolPtr(true),
		Folder:         "venues",
		Transformation: "w_1200,h_675,c_fill,q_auto",
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	url := cacheBustedURL(resp.SecureURL)
	if err := app.store.Venues.SetCoverImage(r.Context(), venueID, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"cover_image_url": url})
}

func (app *application) deleteVenueCoverHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
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

	if venue.CoverImageURL != nil {
		if err := app.deletePhotoFromCloudinary(*venue.CoverImageURL); err != nil {
			app.logger.Errorw("cloudinary delete failed", "venue_id", venueID, "error", err)
		}
	}

	if err := app.store.Venues.ClearCoverImage(r.Context(), venueID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "cover removed"})
}

func readInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
