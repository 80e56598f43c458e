package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/auth"
	"github.com/arjun-saseendran/video-stack/internal/model"
	"github.com/arjun-saseendran/video-stack/internal/service"
)

// maxUploadBytes caps the in-memory portion of multipart parsing; larger
// parts spill to disk automatically.
const maxUploadBytes = 32 << 20 // 32 MiB

// CookieConfig controls the session cookies. Secure is enabled only in
// production-like environments — a Secure cookie is invisible over plain
// HTTP, which would break local development.
type CookieConfig struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// UserHandler exposes the account endpoints: registration, session
// lifecycle, password change, and profile media updates.
//
// It owns the HTTP concerns — multipart parsing, JSON decoding, cookies —
// and hands typed inputs to UserService.
type UserHandler struct {
	responder
	users   *service.UserService
	cookies CookieConfig
	tempDir string
}

func NewUserHandler(users *service.UserService, cookies CookieConfig, tempDir string, logger *slog.Logger, debug bool) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger, debug: debug},
		users:     users,
		cookies:   cookies,
		tempDir:   tempDir,
	}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/v1/users/register
// Body: multipart/form-data with fields fullname, email, username, password
// and files avatar (required), coverImage (optional).
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, apperror.ValidationFailed("", "request must be multipart/form-data"))
		return
	}

	avatar, err := h.formFile(r, "avatar")
	if err != nil {
		h.writeError(w, err)
		return
	}
	cover, err := h.formFile(r, "coverImage")
	if err != nil {
		h.discard(avatar)
		h.writeError(w, err)
		return
	}

	in := service.RegistrationInput{
		FullName:   r.FormValue("fullname"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		// The media gateway removes files it consumed; anything the
		// workflow never reached is still on disk.
		h.discard(avatar, cover)
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and starts a session.
//
// HTTP: POST /api/v1/users/login
//
// Both tokens are returned in the body and set as HttpOnly cookies, so
// browser and non-browser clients work against the same endpoint.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	result, err := h.users.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookies(w, result)
	writeSuccess(w, http.StatusOK, map[string]any{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "user logged in successfully")
}

// HandleLogout ends the session: the persisted refresh token is cleared and
// both cookies are dropped. Safe to call twice.
//
// HTTP: POST /api/v1/users/logout (authenticated)
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		h.writeError(w, err)
		return
	}

	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, nil, "user logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh rotates the token pair.
//
// HTTP: POST /api/v1/users/refresh-token
//
// The refresh token is read from the refreshToken cookie, falling back to a
// refreshToken body field for clients that don't hold cookies.
func (h *UserHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	result, err := h.users.Refresh(r.Context(), presented)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setSessionCookies(w, result)
	writeSuccess(w, http.StatusOK, map[string]any{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// HandleChangePassword verifies the old password and sets a new one.
//
// HTTP: POST /api/v1/users/change-password (authenticated)
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "password changed successfully")
}

// HandleCurrentUser returns the authenticated user's projected record.
//
// HTTP: GET /api/v1/users/current-user (authenticated)
func (h *UserHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	user, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// HandleUpdateAccount patches fullname and email.
//
// HTTP: PATCH /api/v1/users/update-account (authenticated)
func (h *UserHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	user, err := h.users.UpdateAccountDetails(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "account details updated successfully")
}

// HandleUpdateAvatar replaces the user's avatar.
//
// HTTP: PATCH /api/v1/users/avatar (authenticated, multipart field "avatar")
func (h *UserHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "avatar", h.users.UpdateAvatar, "avatar updated successfully")
}

// HandleUpdateCoverImage replaces the user's cover image.
//
// HTTP: PATCH /api/v1/users/cover-image (authenticated, multipart field "coverImage")
func (h *UserHandler) HandleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "coverImage", h.users.UpdateCoverImage, "cover image updated successfully")
}

// handleImageUpdate is the shared body of the avatar and cover-image
// endpoints: authenticate, spool the file, call the workflow.
func (h *UserHandler) handleImageUpdate(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, userID string, file *service.UploadedFile) (*model.User, error),
	message string,
) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, apperror.ValidationFailed(field, "request must be multipart/form-data"))
		return
	}

	file, err := h.formFile(r, field)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := update(r.Context(), userID, file)
	if err != nil {
		h.discard(file)
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, message)
}

// setSessionCookies stores both tokens as HttpOnly cookies under the
// canonical names. The same names are used for clearing at logout —
// mismatched names would leave stale cookies behind.
func (h *UserHandler) setSessionCookies(w http.ResponseWriter, result *service.SessionResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    result.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cookies.AccessMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    result.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cookies.RefreshMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// discard removes spooled upload files the workflow never consumed.
func (h *UserHandler) discard(files ...*service.UploadedFile) {
	for _, f := range files {
		if f == nil || f.LocalPath == "" {
			continue
		}
		if err := os.Remove(f.LocalPath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("removing spooled upload", slog.String("path", f.LocalPath), slog.String("error", err.Error()))
		}
	}
}
