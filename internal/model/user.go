// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username and email are stored trimmed and lowercased; both carry UNIQUE
// constraints in the database, which is what actually enforces the
// no-duplicates invariant under concurrent registration.
//
// PasswordHash and RefreshToken are tagged `json:"-"` so no response path can
// ever serialize them — projection is structural, not per-handler discipline.
//
// RefreshToken holds the single currently valid refresh token for the user
// (empty if none). Issuing a new one overwrites and thereby invalidates the
// previous value; logout clears it.
type User struct {
	ID            string    `json:"id"            db:"id"`
	Username      string    `json:"username"      db:"username"`
	Email         string    `json:"email"         db:"email"`
	FullName      string    `json:"fullname"      db:"full_name"`
	PasswordHash  string    `json:"-"             db:"password_hash"`
	AvatarURL     string    `json:"avatar"        db:"avatar_url"` // always present after registration
	AvatarID      string    `json:"-"             db:"avatar_id"`  // media-store public ID, kept for deletion
	CoverImageURL string    `json:"coverImage"    db:"cover_image_url"` // optional
	CoverImageID  string    `json:"-"             db:"cover_image_id"`
	RefreshToken  string    `json:"-"             db:"refresh_token"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// Video is a read-only view of the externally owned videos collection.
// Only the fields the watch-history endpoint returns are modeled.
type Video struct {
	ID           string    `json:"id"           db:"id"`
	OwnerID      string    `json:"-"            db:"owner_id"`
	Title        string    `json:"title"        db:"title"`
	Description  string    `json:"description"  db:"description"`
	VideoURL     string    `json:"videoUrl"     db:"video_url"`
	ThumbnailURL string    `json:"thumbnail"    db:"thumbnail_url"`
	Duration     float64   `json:"duration"     db:"duration"`
	Views        int64     `json:"views"        db:"views"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`

	// Owner is the projected owner of the video: fullname, username and
	// avatar only — never the owner's credentials.
	Owner *VideoOwner `json:"owner,omitempty"`
}

// VideoOwner is the projection of a video's owning user embedded in
// watch-history responses.
type VideoOwner struct {
	FullName  string `json:"fullname"  db:"full_name"`
	Username  string `json:"username"  db:"username"`
	AvatarURL string `json:"avatar"    db:"avatar_url"`
}

// Subscription links a subscriber to a channel (a user viewed as the target
// of subscriptions). Read-only in this service.
type Subscription struct {
	ID           string    `json:"id"         db:"id"`
	SubscriberID string    `json:"subscriber" db:"subscriber_id"`
	ChannelID    string    `json:"channel"    db:"channel_id"`
	CreatedAt    time.Time `json:"createdAt"  db:"created_at"`
}

// ChannelProfile is the public channel view: the user's profile fields plus
// subscription counts and whether the current viewer is subscribed.
//
// JSON keys follow the API contract the frontend already consumes.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullname"`
	AvatarURL                 string `json:"avatar"`
	CoverImageURL             string `json:"coverImage"`
	SubscriptionCount         int64  `json:"subscriptionCount"`         // users subscribed to this channel
	ChannelSubscriberedToCount int64 `json:"channelSubscriberedToCount"` // channels this user subscribes to
	IsSubscribed              bool   `json:"isSubscribed"`
}
