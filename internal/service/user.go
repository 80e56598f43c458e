// Package service holds the business workflows, between the HTTP handlers
// and the repositories/gateways:
//
//	handler (HTTP) → UserService / ProfileService → repository (DB)
//	                                             ↘ auth.TokenService (JWT)
//	                                             ↘ media.Store (blob store)
//
// Handlers parse requests into the typed inputs below; services know nothing
// about HTTP, cookies or multipart forms.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/auth"
	"github.com/arjun-saseendran/video-stack/internal/media"
	"github.com/arjun-saseendran/video-stack/internal/model"
	"github.com/arjun-saseendran/video-stack/internal/repository"
)

// UploadedFile describes a file the boundary layer has already spooled to
// local disk. The media gateway consumes (and removes) the file at LocalPath.
type UploadedFile struct {
	Name      string // original filename from the multipart form
	LocalPath string // temp file on this server
	MIMEHint  string // Content-Type reported by the client, advisory only
}

// RegistrationInput is the typed form of the registration request.
type RegistrationInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *UploadedFile // required
	CoverImage *UploadedFile // optional
}

// LoginInput is the typed form of the login request. All three fields are
// required — a deliberate product decision carried over from the existing
// API, even though the lookup itself matches username OR email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// SessionResult bundles the user and the freshly issued token pair so the
// handler can set cookies and build the response body in one step.
type SessionResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// UserService implements the registration and session workflows.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	media     media.Store
	logger    *slog.Logger
}

// NewUserService wires the workflow dependencies. Called once from the
// composition root in internal/server.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mediaStore media.Store,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		media:     mediaStore,
		logger:    logger,
	}
}

// Register runs the registration workflow:
//
//	validate → uniqueness check → required avatar → upload avatar →
//	upload cover (optional) → create → re-fetch
//
// Upload failures abort before any persistence, so there is nothing to roll
// back. Once media is uploaded, a creation or re-fetch failure triggers
// best-effort deletion of every asset uploaded in this attempt — otherwise
// the remote store keeps images for a user that never materialized. Those
// compensating deletes are logged and never replace the primary error.
func (s *UserService) Register(ctx context.Context, in RegistrationInput) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	switch {
	case in.FullName == "":
		return nil, apperror.ValidationFailed("fullname", "fullname is required")
	case in.Email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case in.Username == "":
		return nil, apperror.ValidationFailed("username", "username is required")
	case strings.TrimSpace(in.Password) == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	// Uniqueness check before any upload: registering a taken name must not
	// cost a round trip to the media store.
	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Internal("failed to check existing users", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("user with email or username already exists")
	}

	if in.Avatar == nil || in.Avatar.LocalPath == "" {
		return nil, apperror.ValidationFailed("avatar", "avatar file is missing")
	}

	avatar, err := s.media.Upload(ctx, in.Avatar.LocalPath)
	if err != nil {
		return nil, apperror.UploadFailed("avatar", err)
	}

	var cover *media.Asset
	if in.CoverImage != nil && in.CoverImage.LocalPath != "" {
		cover, err = s.media.Upload(ctx, in.CoverImage.LocalPath)
		if err != nil {
			// The avatar already uploaded in this attempt is left in place;
			// only a persistence failure below triggers cleanup.
			return nil, apperror.UploadFailed("cover image", err)
		}
	}

	// Hashing is an explicit step here, not a hidden pre-save hook — every
	// call site that persists a password can be seen doing it.
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		s.cleanupAssets(ctx, avatar, cover)
		return nil, apperror.Internal("failed to process password", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		AvatarURL:    avatar.URL,
		AvatarID:     avatar.PublicID,
	}
	if cover != nil {
		user.CoverImageURL = cover.URL
		user.CoverImageID = cover.PublicID
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.cleanupAssets(ctx, avatar, cover)
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the race against a concurrent registration; the unique
			// constraint caught what the up-front check missed.
			return nil, err
		}
		return nil, apperror.Internal("something went wrong while registering the user", err)
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		// Should be unreachable right after a successful insert.
		s.cleanupAssets(ctx, avatar, cover)
		return nil, apperror.Internal("something went wrong while registering the user", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", created.ID),
		slog.String("username", created.Username),
	)
	return created, nil
}

// cleanupAssets best-effort deletes media uploaded during a failed
// registration attempt. Errors are logged by the gateway and ignored here.
func (s *UserService) cleanupAssets(ctx context.Context, assets ...*media.Asset) {
	for _, a := range assets {
		if a == nil {
			continue
		}
		if err := s.media.Delete(ctx, a.PublicID); err != nil {
			s.logger.Warn("compensating media delete failed",
				slog.String("publicID", a.PublicID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Login checks credentials and issues a fresh token pair. The refresh token
// is persisted on the user record before the result is returned, so the
// rotation check in Refresh sees it immediately.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*SessionResult, error) {
	switch {
	case strings.TrimSpace(in.Username) == "":
		return nil, apperror.ValidationFailed("username", "username is required")
	case strings.TrimSpace(in.Email) == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case in.Password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("failed to look up user", err)
	}

	if !s.passwords.Verify(user.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	result, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return result, nil
}

// Logout invalidates the persisted refresh token. Logging out twice is not
// an error — clearing an empty field is a no-op.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperror.Internal("failed to log out", err)
	}
	s.logger.Info("user logged out", slog.String("userID", userID))
	return nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
//
// Beyond signature and expiry, the presented token must equal the value
// persisted on the user record: after a rotation the previous token is still
// validly signed but no longer persisted, and must be rejected.
func (s *UserService) Refresh(ctx context.Context, presented string) (*SessionResult, error) {
	if presented == "" {
		return nil, apperror.Unauthorized("refresh token is required")
	}

	userID, err := s.tokens.Verify(presented, auth.RefreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Validly signed token for a user that no longer exists.
			return nil, apperror.Unauthorized("invalid refresh token")
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	if user.RefreshToken != presented {
		return nil, apperror.Unauthorized("refresh token has been rotated or revoked")
	}

	result, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tokens refreshed", slog.String("userID", user.ID))
	return result, nil
}

// issueTokenPair issues both tokens, persists the refresh token and returns
// the re-fetched user. Persisting here keeps "token issued" and "token
// recorded" as one step from every caller's point of view.
func (s *UserService) issueTokenPair(ctx context.Context, userID string) (*SessionResult, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, apperror.Internal("something went wrong while generating tokens", err)
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, apperror.Internal("something went wrong while generating tokens", err)
	}

	if err := s.users.SetRefreshToken(ctx, userID, refresh); err != nil {
		return nil, apperror.Internal("something went wrong while generating tokens", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}

	return &SessionResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// ChangePassword verifies the old password and stores the hash of the new
// one. Nothing else on the record is touched or revalidated.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperror.ValidationFailed("newPassword", "new password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperror.Internal("failed to load user", err)
	}

	if !s.passwords.Verify(user.PasswordHash, oldPassword) {
		return apperror.Unauthorized("incorrect old password")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.Internal("failed to process password", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.Internal("failed to update password", err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

// CurrentUser returns the authenticated user's record. Secrets are excluded
// structurally by the model's JSON tags.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAccountDetails patches fullname and email on the account.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case fullName == "":
		return nil, apperror.ValidationFailed("fullname", "fullname is required")
	case email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	return s.users.UpdateAccountDetails(ctx, userID, fullName, email)
}

// UpdateAvatar uploads a replacement avatar and persists its URL. The
// previous asset is deleted from the store best-effort after the swap — a
// failed delete leaves an orphan, never a broken profile.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, file *UploadedFile) (*model.User, error) {
	return s.replaceImage(ctx, userID, file, "avatar",
		func(u *model.User) string { return u.AvatarID },
		s.users.UpdateAvatar,
	)
}

// UpdateCoverImage uploads a replacement cover image and persists its URL.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, file *UploadedFile) (*model.User, error) {
	return s.replaceImage(ctx, userID, file, "coverImage",
		func(u *model.User) string { return u.CoverImageID },
		s.users.UpdateCoverImage,
	)
}

func (s *UserService) replaceImage(
	ctx context.Context,
	userID string,
	file *UploadedFile,
	field string,
	oldID func(*model.User) string,
	persist func(ctx context.Context, id, url, publicID string) (*model.User, error),
) (*model.User, error) {
	if file == nil || file.LocalPath == "" {
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("%s file is missing", field))
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}

	asset, err := s.media.Upload(ctx, file.LocalPath)
	if err != nil {
		return nil, apperror.UploadFailed(field, err)
	}
	if asset == nil || asset.URL == "" {
		return nil, apperror.Internal(fmt.Sprintf("upload of %s returned no url", field), nil)
	}

	updated, err := persist(ctx, userID, asset.URL, asset.PublicID)
	if err != nil {
		// The new asset is now orphaned; remove it best-effort.
		s.cleanupAssets(ctx, asset)
		return nil, apperror.Internal(fmt.Sprintf("failed to update %s", field), err)
	}

	// Replacement persisted — drop the old asset so the store doesn't
	// accumulate every image a user has ever had.
	if prev := oldID(current); prev != "" && prev != asset.PublicID {
		if err := s.media.Delete(ctx, prev); err != nil {
			s.logger.Warn("deleting replaced media failed",
				slog.String("publicID", prev),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("profile image updated",
		slog.String("userID", userID),
		slog.String("field", field),
	)
	return updated, nil
}
