package main

import (
	"errors"
	"net/http"
	"strconv"

	"advisoret/internal/moderation"
	"advisoret/internal/notifications"
	"advisoret/internal/store"

	"github.com/go-chi/chi/v5"
)

type createProposalPayload struct {
	Name      string   `json:"name" validate:"required,max=120"`
	City      string   `json:"city" validate:"required,max=80"`
	Address   string   `json:"address" validate:"required,max=200"`
	MapURL    *string  `json:"map_url" validate:"omitempty,url"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Note      *string  `json:"note" validate:"omitempty,max=500"`
}

// createProposalHandler accepts a user's request to list a new venue.
// Proposals always start pending; only admin review makes them venues.
func (app *application) createProposalHandler(w http.ResponseWriter, r *http.Request) {
	var payload createProposalPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	proposal := &store.VenueProposal{
		UserID:    user.ID,
		Name:      payload.Name,
		City:      payload.City,
		Address:   payload.Address,
		MapURL:    payload.MapURL,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		Note:      payload.Note,
	}

	if err := app.store.Proposals.Create(r.Context(), proposal); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if app.counts != nil {
		app.counts.InvalidatePending(r.Context())
	}

	app.jsonResponse(w, http.StatusCreated, proposal)
}

func (app *application) adminListProposalsHandler(w http.ResponseWriter, r *http.Request) {
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

	proposals, err := app.store.Proposals.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, proposals)
}

// adminGetProposalHandler shows one proposal together with possible
// duplicates among existing venues. The duplicate list is advisory
// only; the reviewer decides.
func (app *application) adminGetProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid proposal ID"))
		return
	}

	proposal, err := app.store.Proposals.GetByID(r.Context(), proposalID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	var duplicates []moderation.Match
	pool, err := app.store.Venues.DedupePool(r.Context(), proposal.City)
	if err != nil {
		app.logger.Warnw("dedupe pool lookup failed", "proposal_id", proposalID, "error", err)
	} else {
		var mapURL string
		if proposal.MapURL != nil {
			mapURL = *proposal.MapURL
		}
		duplicates = moderation.FindDuplicates(proposal.Name, proposal.City, mapURL, pool)
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"proposal":            proposal,
		"possible_duplicates": duplicates,
	})
}

type resolveProposalPayload struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
}

// adminApproveProposalHandler turns a pending proposal into a listed
// venue. The venue is created first; if marking the proposal resolved
// then fails the approval is reported as a conflict, not silently
// retried.
func (app *application) adminApproveProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid proposal ID"))
		return
	}

	var payload resolveProposalPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	proposal, err := app.store.Proposals.GetByID(r.Context(), proposalID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if proposal.Status != store.SubmissionPending {
		app.conflictResponse(w, r, errors.New("proposal already resolved"))
		return
	}

	admin := getUserFromContext(r)

	venue := &store.Venue{
		Name:      proposal.Name,
		City:      proposal.City,
		Address:   proposal.Address,
		MapURL:    proposal.MapURL,
		Latitude:  proposal.Latitude,
		Longitude: proposal.Longitude,
		Approved:  true,
	}
	if err := app.store.Venues.Create(r.Context(), venue); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Proposals.MarkApproved(r.Context(), proposalID, admin.ID, payload.Note); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("proposal already resolved"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if app.counts != nil {
		app.counts.InvalidatePending(r.Context())
	}

	app.notifyModeration(r, proposal.UserID, notifications.ProposalApproved, proposal.Name)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "proposal approved",
		"venue":   venue,
	})
}

func (app *application) adminRejectProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid proposal ID"))
		return
	}

	var payload resolveProposalPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	proposal, err := app.store.Proposals.GetByID(r.Context(), proposalID)
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

	if err := app.store.Proposals.MarkRejected(r.Context(), proposalID, admin.ID, payload.Note); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("proposal already resolved"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if app.counts != nil {
		app.counts.InvalidatePending(r.Context())
	}

	app.notifyModeration(r, proposal.UserID, notifications.ProposalRejected, proposal.Name)

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "proposal rejected"})
}

// notifyModeration pushes a moderation outcome to the submitter. Push
// delivery never fails the request.
func (app *application) notifyModeration(r *http.Request, userID int64, event notifications.ModerationEvent, subject string) {
	err := notifications.SendModerationNotification(r.Context(), app.push, app.store.PushTokens, userID, event, subject)
	if err != nil && !errors.Is(err, notifications.ErrNoTokens) {
		app.logger.Warnw("moderation push failed", "user_id", userID, "event", event, "error", err)
	}
}
