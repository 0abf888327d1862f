package main

import (
	"encoding/json"
	"net/http"
	"strings"
)

type pushTokenPayload struct {
	Token      string          `json:"token" validate:"required"`
	DeviceInfo json.RawMessage `json:"device_info"`
}

// registerPushTokenHandler stores the device's Expo push token so the
// user can receive moderation updates. Re-registering the same token
// just refreshes it.
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.store.PushTokens.AddOrUpdatePushToken(r.Context(), user.ID, strings.TrimSpace(payload.Token), payload.DeviceInfo); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token registered"})
}

func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.store.PushTokens.RemovePushToken(r.Context(), user.ID, strings.TrimSpace(payload.Token)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token removed"})
}
