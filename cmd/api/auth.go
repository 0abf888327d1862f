package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"advisoret/internal/mailer"
	"advisoret/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const loginCodeTTL = 10 * time.Minute

type RegisterUserPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserWithToken struct {
	*store.User `json:"user"`
	Token       string `json:"token"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Description	Registers a user; an activation link is emailed and must be followed before login
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		Name:     payload.Name,
		Username: payload.Username,
		Email:    payload.Email,
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ctx := r.Context()

	plainToken := uuid.New().String()
	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	err := app.store.Users.CreateAndInvite(ctx, user, hashToken, app.config.mail.exp)
	if err != nil {
		switch err {
		case store.ErrDuplicateEmail, store.ErrDuplicateUsername:
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	userWithToken := UserWithToken{
		User:  user,
		Token: plainToken,
	}

	activationURL := fmt.Sprintf("%s/confirm?token=%s", app.config.frontendURL, plainToken)

	vars := struct {
		Username      string
		ActivationURL string
	}{
		Username:      user.Name,
		ActivationURL: activationURL,
	}

	status, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.Name, user.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending welcome email", "error", err)

		// rollback user creation if email fails (SAGA pattern)
		if err := app.store.Users.Delete(ctx, user.ID); err != nil {
			app.logger.Errorw("error deleting user", "error", err)
		}

		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("welcome email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusCreated, userWithToken); err != nil {
		app.internalServerError(w, r, err)
	}
}

// activateUserHandler burns the invitation token from the emailed link.
func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	hash := sha256.Sum256([]byte(token))
	hashToken := hex.EncodeToString(hash[:])

	if err := app.store.Users.Activate(r.Context(), hashToken); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "account activated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateUserTokenPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
}

// createTokenHandler godoc
//
//	@Summary		Login with password
//	@Description	Creates an access/refresh token pair for an active user
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	app.respondWithTokens(w, r, user)
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	jwtToken, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, _ := jwtToken.Claims.(jwt.MapClaims)
	userID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	savedToken, err := app.store.Users.GetRefreshToken(r.Context(), userID)
	if err != nil || savedToken != payload.RefreshToken {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token mismatch"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	app.respondWithTokens(w, r, user)
}

// logoutHandler nullifies the stored refresh token so the pair held by
// the client can no longer be rotated. Access tokens expire on their
// own.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.store.Users.DeleteRefreshToken(r.Context(), user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type RequestLoginCodePayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// requestLoginCodeHandler emails a one-time 6-digit login code. The
// response is the same whether or not the email exists, so the endpoint
// can't be used to probe accounts.
func (app *application) requestLoginCodeHandler(w http.ResponseWriter, r *http.Request) {
	var payload RequestLoginCodePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	accepted := map[string]string{"message": "if that account exists, a code is on its way"}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.jsonResponse(w, http.StatusAccepted, accepted)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	code, err := generateLoginCode()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	hash := sha256.Sum256([]byte(code))
	codeHash := hex.EncodeToString(hash[:])

	if err := app.store.Users.SetLoginCode(r.Context(), user.ID, codeHash, time.Now().Add(loginCodeTTL)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	vars := struct {
		Username  string
		Code      string
		ExpiresIn string
	}{
		Username:  user.Name,
		Code:      code,
		ExpiresIn: "10 minutes",
	}

	if _, err := app.mailer.Send(mailer.LoginCodeTemplate, user.Name, user.Email, vars); err != nil {
		app.logger.Errorw("error sending login code email", "error", err)
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusAccepted, accepted); err != nil {
		app.internalServerError(w, r, err)
	}
}

type VerifyLoginCodePayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// verifyLoginCodeHandler exchanges a one-time code for a token pair.
// The same endpoint serves codes arriving via deep link.
func (app *application) verifyLoginCodeHandler(w http.ResponseWriter, r *http.Request) {
	var payload VerifyLoginCodePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hash := sha256.Sum256([]byte(payload.Code))
	codeHash := hex.EncodeToString(hash[:])

	user, err := app.store.Users.ConsumeLoginCode(r.Context(), payload.Email, codeHash)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid or expired code"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.respondWithTokens(w, r, user)
}

func (app *application) respondWithTokens(w http.ResponseWriter, r *http.Request, user *store.User) {
	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Role())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       strconv.FormatInt(user.ID, 10),
		Role:         user.Role(),
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
