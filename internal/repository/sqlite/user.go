package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/model"
	"github.com/arjun-saseendran/video-stack/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository over the shared pool.
type UserRepo struct {
	conn *sql.DB
}

const userColumns = `id, username, email, full_name, password_hash,
	avatar_url, avatar_id, cover_image_url, cover_image_id, refresh_token,
	created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.AvatarID,
		&u.CoverImageURL,
		&u.CoverImageID,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user, generating the ID and timestamps.
//
// A UNIQUE violation on username or email is translated to
// apperror.ErrConflict. That translation is what protects the uniqueness
// invariant under concurrent registration — the up-front existence check in
// the workflow can always lose a race, the constraint cannot.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		user.AvatarID,
		user.CoverImageURL,
		user.CoverImageID,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user with email or username already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}
	return nil
}

// FindByID returns the full user record, apperror.ErrNotFound if absent.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// FindByUsername returns the user owning the given (lowercased) username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("channel")
		}
		return nil, fmt.Errorf("sqlite: getting user by username %s: %w", username, err)
	}
	return u, nil
}

// FindByUsernameOrEmail returns the first user matching either identifier,
// apperror.ErrNotFound when neither matches.
func (r *UserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	u, err := scanUser(r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`,
		username, email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: getting user by username/email: %w", err)
	}
	return u, nil
}

// UpdateAccountDetails patches fullname and email and returns the updated
// record. An email collision maps to apperror.ErrConflict.
func (r *UserRepo) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*model.User, error) {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`,
		fullName, email, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("email already in use")
		}
		return nil, fmt.Errorf("sqlite: updating account details for %s: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

// SetRefreshToken stores the currently valid refresh token for the user.
// Overwriting is what invalidates the previous token (rotation).
func (r *UserRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.setField(ctx, id, "refresh_token", token)
}

// ClearRefreshToken removes the persisted refresh token. Clearing an
// already-empty field is not an error, which makes logout idempotent.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	return r.setField(ctx, id, "refresh_token", "")
}

// UpdatePassword stores a new password hash. The hash is produced by the
// caller — this layer never sees plaintext.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, newHash string) error {
	return r.setField(ctx, id, "password_hash", newHash)
}

// UpdateAvatar swaps the avatar reference and returns the updated record.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id, url, publicID string) (*model.User, error) {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE users SET avatar_url = ?, avatar_id = ?, updated_at = ? WHERE id = ?`,
		url, publicID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating avatar for %s: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

// UpdateCoverImage swaps the cover-image reference and returns the updated record.
func (r *UserRepo) UpdateCoverImage(ctx context.Context, id, url, publicID string) (*model.User, error) {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE users SET cover_image_url = ?, cover_image_id = ?, updated_at = ? WHERE id = ?`,
		url, publicID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating cover image for %s: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

// setField updates a single trusted column. No revalidation of the rest of
// the row — single-field writes ride on SQLite's per-row atomicity.
func (r *UserRepo) setField(ctx context.Context, id, column, value string) error {
	// column comes from a fixed call-site set, never from input.
	_, err := r.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s for %s: %w", column, id, err)
	}
	return nil
}

// isUniqueViolation detects SQLite's UNIQUE constraint error. The modernc
// driver surfaces it as a plain error string (code 2067 / 1555).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
