// Package repository declares the persistence contracts the services depend
// on. The sqlite subpackage is the only implementation; services never see
// concrete store types.
package repository

import (
	"context"

	"github.com/arjun-saseendran/video-stack/internal/model"
)

// UserRepository persists the user entity.
//
// Mutating operations touch single trusted fields (refresh token, password
// hash, media URLs) and rely on the store's per-row atomicity rather than
// whole-document revalidation. Create returns apperror.ErrConflict when the
// username or email unique constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, newHash string) error
	UpdateAvatar(ctx context.Context, id, url, publicID string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, id, url, publicID string) (*model.User, error)
}

// SubscriptionRepository reads the externally owned subscriptions collection.
type SubscriptionRepository interface {
	// CountForChannel counts subscriptions targeting the channel (its subscribers).
	CountForChannel(ctx context.Context, channelID string) (int64, error)
	// CountForSubscriber counts subscriptions the user has made (channels subscribed to).
	CountForSubscriber(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error)
}

// VideoRepository reads the externally owned videos collection and the
// per-user watch history that references it.
type VideoRepository interface {
	// WatchHistory resolves the user's ordered watch-history references into
	// full video records, each with a projected owner (fullname, username,
	// avatar only).
	WatchHistory(ctx context.Context, userID string) ([]model.Video, error)
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
}
