package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/auth"
	"github.com/arjun-saseendran/video-stack/internal/media"
	"github.com/arjun-saseendran/video-stack/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository. A hand-written
// fake instead of a mock framework: what it does is visible right here.
type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	createErr   error // non-nil simulates a persistence failure at create
	findByIDErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("user with email or username already exists")
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("channel")
}

func (f *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	u.FullName = fullName
	u.Email = email
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user")
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	if u, ok := f.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, newHash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user")
	}
	u.PasswordHash = newHash
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id, url, publicID string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	u.AvatarURL = url
	u.AvatarID = publicID
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateCoverImage(ctx context.Context, id, url, publicID string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	u.CoverImageURL = url
	u.CoverImageID = publicID
	copied := *u
	return &copied, nil
}

// fakeMediaStore records uploads and deletes instead of hitting a bucket.
type fakeMediaStore struct {
	uploads   []string // local paths received
	deletes   []string // public IDs received
	nextAsset int

	uploadErrAfter int // fail uploads once this many have succeeded (-1 = never)
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{uploadErrAfter: -1}
}

func (f *fakeMediaStore) Upload(ctx context.Context, localPath string) (*media.Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	if f.uploadErrAfter >= 0 && len(f.uploads) >= f.uploadErrAfter {
		return nil, errors.New("media store unavailable")
	}
	f.uploads = append(f.uploads, localPath)
	f.nextAsset++
	id := fmt.Sprintf("media/asset-%d.png", f.nextAsset)
	return &media.Asset{PublicID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, publicID string) error {
	f.deletes = append(f.deletes, publicID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(
		"test-access-secret-16chars!",
		"test-refresh-secret-16chars",
		15*time.Minute,
		24*time.Hour,
	)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// newTestUserService wires a UserService with fakes and fast bcrypt.
func newTestUserService(t *testing.T, repo *fakeUserRepo, store *fakeMediaStore) (*UserService, *auth.TokenService) {
	t.Helper()
	tokens := newTestTokens(t)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	return NewUserService(repo, tokens, passwords, store, testLogger()), tokens
}

func validRegistration() RegistrationInput {
	return RegistrationInput{
		FullName: "Ada Lovelace",
		Email:    "ada@x.com",
		Username: "Ada",
		Password: "secret1",
		Avatar:   &UploadedFile{Name: "avatar.png", LocalPath: "/tmp/avatar.png"},
	}
}

// registerTestUser registers a user through the full workflow so the stored
// password hash is real.
func registerTestUser(t *testing.T, svc *UserService) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return user
}

// =========================================================================
// REGISTRATION
// =========================================================================

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Username != "ada" {
		t.Errorf("Username = %q, want lowercased %q", user.Username, "ada")
	}
	if user.Email != "ada@x.com" {
		t.Errorf("Email = %q, want %q", user.Email, "ada@x.com")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password was not hashed before persistence")
	}
	if user.AvatarURL == "" || user.AvatarID == "" {
		t.Error("avatar reference not set on created user")
	}
	if user.CoverImageURL != "" {
		t.Errorf("CoverImageURL = %q, want empty (no cover uploaded)", user.CoverImageURL)
	}
	if len(store.uploads) != 1 {
		t.Errorf("uploads = %d, want 1 (avatar only)", len(store.uploads))
	}
	if len(store.deletes) != 0 {
		t.Errorf("deletes = %d, want 0 on success", len(store.deletes))
	}
}

func TestRegisterWithCoverImage(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)

	in := validRegistration()
	in.CoverImage = &UploadedFile{Name: "cover.png", LocalPath: "/tmp/cover.png"}

	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.CoverImageURL == "" || user.CoverImageID == "" {
		t.Error("cover image reference not set")
	}
	if len(store.uploads) != 2 {
		t.Errorf("uploads = %d, want 2", len(store.uploads))
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationInput)
	}{
		{"blank fullname", func(in *RegistrationInput) { in.FullName = "   " }},
		{"blank email", func(in *RegistrationInput) { in.Email = "" }},
		{"blank username", func(in *RegistrationInput) { in.Username = "  " }},
		{"blank password", func(in *RegistrationInput) { in.Password = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			store := newFakeMediaStore()
			svc, _ := newTestUserService(t, repo, store)

			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
			if len(store.uploads) != 0 {
				t.Error("validation failure must not trigger uploads")
			}
		})
	}
}

func TestRegisterMissingAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)

	in := validRegistration()
	in.Avatar = nil

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Register() error = %v, want ErrValidation", err)
	}
}

func TestRegisterConflictChecksBeforeUpload(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)
	registerTestUser(t, svc)
	store.uploads = nil

	// Same username in a different case must still conflict.
	in := validRegistration()
	in.Email = "different@x.com"
	in.Username = "ADA"

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register() error = %v, want ErrConflict", err)
	}
	if len(store.uploads) != 0 {
		t.Errorf("uploads = %d, want 0 — conflict check must precede upload", len(store.uploads))
	}
}

func TestRegisterAvatarUploadFailure(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	store.uploadErrAfter = 0 // first upload fails
	svc, _ := newTestUserService(t, repo, store)

	_, err := svc.Register(context.Background(), validRegistration())
	if !errors.Is(err, apperror.ErrUploadFailed) {
		t.Errorf("Register() error = %v, want ErrUploadFailed", err)
	}
	if len(repo.users) != 0 {
		t.Error("no user must be created after a failed upload")
	}
}

func TestRegisterCoverUploadFailureLeavesAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	store.uploadErrAfter = 1 // avatar succeeds, cover fails
	svc, _ := newTestUserService(t, repo, store)

	in := validRegistration()
	in.CoverImage = &UploadedFile{Name: "cover.png", LocalPath: "/tmp/cover.png"}

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, apperror.ErrUploadFailed) {
		t.Errorf("Register() error = %v, want ErrUploadFailed", err)
	}
	if len(repo.users) != 0 {
		t.Error("no user must be created after a failed cover upload")
	}
	// Upload failures abort before persistence; only persistence failures
	// trigger compensation.
	if len(store.deletes) != 0 {
		t.Errorf("deletes = %d, want 0 for an upload-stage failure", len(store.deletes))
	}
}

func TestRegisterCreateFailureCompensates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("database down")
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)

	in := validRegistration()
	in.CoverImage = &UploadedFile{Name: "cover.png", LocalPath: "/tmp/cover.png"}

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, apperror.ErrInternal) {
		t.Errorf("Register() error = %v, want ErrInternal", err)
	}

	// Each uploaded asset deleted exactly once.
	if len(store.deletes) != 2 {
		t.Fatalf("deletes = %d, want 2 (avatar + cover)", len(store.deletes))
	}
	if store.deletes[0] == store.deletes[1] {
		t.Error("the same asset was deleted twice instead of both assets once")
	}
}

func TestRegisterCreateConflictRace(t *testing.T) {
	// A concurrent registration won the race: the up-front check passed but
	// the unique constraint fired at create. The caller must see Conflict,
	// and the uploaded media must be compensated.
	repo := newFakeUserRepo()
	repo.createErr = apperror.Conflict("user with email or username already exists")
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)

	_, err := svc.Register(context.Background(), validRegistration())
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register() error = %v, want ErrConflict", err)
	}
	if len(store.deletes) != 1 {
		t.Errorf("deletes = %d, want 1 (uploaded avatar)", len(store.deletes))
	}
}

// =========================================================================
// LOGIN / LOGOUT / REFRESH
// =========================================================================

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	result, err := svc.Login(context.Background(), LoginInput{
		Username: "ada",
		Email:    "ada@x.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// The access token must verify back to the right user.
	userID, err := tokens.Verify(result.AccessToken, auth.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not verify: %v", err)
	}
	if userID != created.ID {
		t.Errorf("access token subject = %q, want %q", userID, created.ID)
	}

	// The refresh token must equal the value now persisted on the record.
	stored := repo.users[created.ID].RefreshToken
	if stored == "" || stored != result.RefreshToken {
		t.Errorf("persisted refresh token = %q, want issued %q", stored, result.RefreshToken)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "ada",
		Email:    "ada@x.com",
		Password: "wrong",
	})
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}

	// No tokens issued: the refresh-token field must stay untouched.
	if repo.users[created.ID].RefreshToken != "" {
		t.Error("refresh token was persisted despite failed login")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestUserService(t, newFakeUserRepo(), newFakeMediaStore())

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "nobody",
		Email:    "nobody@x.com",
		Password: "whatever",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Login() error = %v, want ErrNotFound", err)
	}
}

func TestLoginRequiresAllFields(t *testing.T) {
	svc, _ := newTestUserService(t, newFakeUserRepo(), newFakeMediaStore())

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"missing username", LoginInput{Email: "ada@x.com", Password: "secret1"}},
		{"missing email", LoginInput{Username: "ada", Password: "secret1"}},
		{"missing password", LoginInput{Username: "ada", Email: "ada@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tt.in); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Login() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("Refresh() did not rotate the refresh token")
	}
	if repo.users[created.ID].RefreshToken != refreshed.RefreshToken {
		t.Error("rotated refresh token was not persisted")
	}

	// The pre-rotation token is validly signed but no longer persisted.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Refresh(stale) error = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshMismatchedToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	if _, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Validly signed for the right user, but never persisted.
	forged, err := tokens.IssueRefresh(created.ID)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	if _, err := svc.Refresh(context.Background(), forged); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Refresh(unpersisted) error = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshDeletedUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestUserService(t, repo, newFakeMediaStore())

	// Validly signed token for a user that no longer exists.
	token, err := tokens.IssueRefresh("gone")
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Refresh(deleted user) error = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshStoreFailureIsNotUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// A database outage must surface as an internal failure, not tell the
	// client its session was revoked.
	repo.findByIDErr = errors.New("database down")
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	if !errors.Is(err, apperror.ErrInternal) {
		t.Errorf("Refresh(store failure) error = %v, want ErrInternal", err)
	}
	if errors.Is(err, apperror.ErrUnauthorized) {
		t.Error("Refresh(store failure) reported the session as unauthorized")
	}
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newTestUserService(t, newFakeUserRepo(), newFakeMediaStore())
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Refresh(\"\") error = %v, want ErrUnauthorized", err)
	}
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(context.Background(), created.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if repo.users[created.ID].RefreshToken != "" {
		t.Error("Logout() did not clear the persisted refresh token")
	}

	// The previously valid refresh token is now unusable.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Refresh(after logout) error = %v, want ErrUnauthorized", err)
	}

	// Logging out twice is not an error.
	if err := svc.Logout(context.Background(), created.ID); err != nil {
		t.Errorf("Logout() second call error = %v", err)
	}
}

// =========================================================================
// PASSWORD CHANGE / PROFILE UPDATES
// =========================================================================

func TestChangePasswordWrongOld(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)
	before := repo.users[created.ID].PasswordHash

	err := svc.ChangePassword(context.Background(), created.ID, "wrong", "newpass1")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("ChangePassword() error = %v, want ErrUnauthorized", err)
	}
	if repo.users[created.ID].PasswordHash != before {
		t.Error("stored hash changed despite wrong old password")
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	if err := svc.ChangePassword(context.Background(), created.ID, "secret1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	// Old password no longer works, new one does.
	if _, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "secret1"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login(old password) error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Username: "ada", Email: "ada@x.com", Password: "newpass1"}); err != nil {
		t.Errorf("Login(new password) error = %v", err)
	}
}

func TestUpdateAvatarReplacesAndDeletesOld(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeMediaStore()
	svc, _ := newTestUserService(t, repo, store)
	created := registerTestUser(t, svc)
	oldID := repo.users[created.ID].AvatarID

	updated, err := svc.UpdateAvatar(context.Background(), created.ID, &UploadedFile{Name: "new.png", LocalPath: "/tmp/new.png"})
	if err != nil {
		t.Fatalf("UpdateAvatar() error = %v", err)
	}

	if updated.AvatarID == oldID {
		t.Error("avatar reference unchanged after update")
	}
	// The replaced asset is deleted best-effort after the swap.
	found := false
	for _, d := range store.deletes {
		if d == oldID {
			found = true
		}
	}
	if !found {
		t.Errorf("old avatar %q was not deleted; deletes = %v", oldID, store.deletes)
	}
}

func TestUpdateAvatarMissingFile(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	if _, err := svc.UpdateAvatar(context.Background(), created.ID, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateAvatar(nil) error = %v, want ErrValidation", err)
	}
}

func TestUpdateCoverImage(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	updated, err := svc.UpdateCoverImage(context.Background(), created.ID, &UploadedFile{Name: "cover.png", LocalPath: "/tmp/cover.png"})
	if err != nil {
		t.Fatalf("UpdateCoverImage() error = %v", err)
	}
	if updated.CoverImageURL == "" {
		t.Error("cover image URL not set after update")
	}
}

func TestCurrentUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	got, err := svc.CurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("CurrentUser() = %q, want %q", got.ID, created.ID)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CurrentUser(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateAccountDetails(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestUserService(t, repo, newFakeMediaStore())
	created := registerTestUser(t, svc)

	got, err := svc.UpdateAccountDetails(context.Background(), created.ID, "Augusta Ada King", "countess@x.com")
	if err != nil {
		t.Fatalf("UpdateAccountDetails() error = %v", err)
	}
	if got.FullName != "Augusta Ada King" || got.Email != "countess@x.com" {
		t.Errorf("UpdateAccountDetails() = %q/%q", got.FullName, got.Email)
	}

	if _, err := svc.UpdateAccountDetails(context.Background(), created.ID, "", "x@x.com"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateAccountDetails(blank name) error = %v, want ErrValidation", err)
	}
}
