package main

import (
	"errors"
	"net/http"
	"strconv"

	"advisoret/internal/notifications"
	"advisoret/internal/store"

	"github.com/go-chi/chi/v5"
)

type createReportPayload struct {
	Message string `json:"message" validate:"required,min=10,max=500"`
}

// createVenueReportHandler files a correction request against an
// existing venue. Reports go into the same admin review queue as
// proposals.
func (app *application) createVenueReportHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createReportPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
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

	user := getUserFromContext(r)

	report := &store.VenueReport{
		VenueID: venueID,
		UserID:  user.ID,
		Message: payload.Message,
	}

	if err := app.store.Reports.Create(r.Context(), report); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if app.counts != nil {
		app.counts.InvalidatePending(r.Context())
	}

	app.jsonResponse(w, http.StatusCreated, report)
}

func (app *application) adminListReportsHandler(w http.ResponseWriter, r *http.Request) {
	filter := store.SubmissionFilter{
		Page:  readInt(r.URL.Query().Get("page"), 1),
		Limit: readInt(r.URL.Query().Get("limit"), 20),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := store.SubmissionStatus(raw)
		if !status.Valid() {
			app.badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
		filter.Status = &status
	}

	reports, err := app.store.Reports.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, reports)
}

type resolveReportPayload struct {
	Status store.SubmissionStatus `json:"status" validate:"required"`
	Note   *string                `json:"note" validate:"omitempty,max=500"`
}

// adminResolveReportHandler closes a report as approved or rejected.
// Any actual data fix to the venue happens separately via the venue
// update endpoint; resolving only records the decision.
func (app *application) adminResolveReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid report ID"))
		return
	}

	var payload resolveReportPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Status != store.SubmissionApproved && payload.Status != store.SubmissionRejected {
		app.badRequestResponse(w, r, errors.New("status must be approved or rejected"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	report, err := app.store.Reports.GetByID(r.Context(), reportID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	admin := getUserFromContext(r)

	if err := app.store.Reports.Resolve(r.Context(), reportID, admin.ID, payload.Status, payload.Note); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("report already resolved"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if app.counts != nil {
		app.counts.InvalidatePending(r.Context())
	}

	event := notifications.ReportResolved
	if payload.Status == store.SubmissionRejected {
		event = notifications.ReportRejected
	}
	app.notifyModeration(r, report.UserID, event, report.VenueName)

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "report resolved"})
}

// pendingCountHandler feeds the admin badge: the combined number of
// pending proposals and reports. The value is cached briefly in Redis,
// and any failure degrades to a zero badge rather than an error.
func (app *application) pendingCountHandler(w http.ResponseWriter, r *http.Request) {
	if app.counts != nil {
		if n, ok := app.counts.GetPendingCount(r.Context()); ok {
			app.jsonResponse(w, http.StatusOK, map[string]int{"pending_count": n})
			return
		}
	}

	proposals, err := app.store.Proposals.CountPending(r.Context())
	if err != nil {
		app.logger.Errorw("pending proposal count failed", "error", err)
		app.jsonResponse(w, http.StatusOK, map[string]int{"pending_count": 0})
		return
	}
	reports, err := app.store.Reports.CountPending(r.Context())
	if err != nil {
		app.logger.Errorw("pending report count failed", "error", err)
		app.jsonResponse(w, http.StatusOK, map[string]int{"pending_count": 0})
		return
	}

	total := proposals + reports
	if app.counts != nil {
		app.counts.SetPendingCount(r.Context(), total)
	}

	app.jsonResponse(w, http.StatusOK, map[string]int{"pending_count": total})
}
