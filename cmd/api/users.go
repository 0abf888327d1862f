package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"advisoret/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

type userKey string

const userCtx userKey = "user"

func getUserFromContext(r *http.Request) *store.User {
	if user, ok := r.Context().Value(userCtx).(*store.User); ok {
		return user
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

// currentUserHandler returns the caller's own profile, admin access
// resolved.
func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	resp := map[string]any{
		"user":     user,
		"is_admin": user.HasAdminAccess(),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	viewer := getUserFromContext(r)
	following, err := app.store.Followers.IsFollowing(r.Context(), viewer.ID, userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"profile": store.UserSummary{
			ID:        user.ID,
			Name:      user.Name,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		},
		"is_following": following,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type updateProfilePayload struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
}

func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload updateProfilePayload
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
	if payload.Username != nil {
		updates["username"] = *payload.Username
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("nothing to update"))
		return
	}

	if err := app.store.Users.UpdateProfile(r.Context(), user.ID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// uploadAvatarHandler stores the picture under the user's id so a
// re-upload replaces the old asset in place.
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := r.ParseMultipartForm(2 << 20); err != nil { // 2 MB
		app.badRequestResponse(w, r, errors.New("unable to parse form, file size limit is 2MB"))
		return
	}

	file, fileHeader, err := r.FormFile("avatar")
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

	resp, err := app.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		PublicID:       fmt.Sprintf("%d", user.ID),
		Overwrite:      boolPtr(true),
		Folder:         "avatars",
		Transformation: "w_300,h_300,c_fill,q_auto",
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	url := cacheBustedURL(resp.SecureURL)
	if err := app.store.Users.SetAvatar(r.Context(), user.ID, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// followUserHandler godoc
//
//	@Summary	Follow a user
//	@Tags		users
//	@Router		/users/{userID}/follow [put]
func (app *application) followUserHandler(w http.ResponseWriter, r *http.Request) {
	follower := getUserFromContext(r)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}
	if userID == follower.ID {
		app.badRequestResponse(w, r, errors.New("you cannot follow yourself"))
		return
	}

	if err := app.store.Followers.Follow(r.Context(), follower.ID, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			// Already following; the toggle is idempotent for the client.
			app.jsonResponse(w, http.StatusOK, map[string]string{"message": "already following"})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "followed"})
}

func (app *application) unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	follower := getUserFromContext(r)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	if err := app.store.Followers.Unfollow(r.Context(), follower.ID, userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "unfollowed"})
}

func (app *application) listFollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	followers, err := app.store.Followers.ListFollowers(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, followers)
}

func (app *application) listFollowingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	following, err := app.store.Followers.ListFollowing(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, following)
}
