package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/model"
	"github.com/arjun-saseendran/video-stack/internal/repository"
)

// ProfileService builds the two public read models: channel profiles and
// watch history.
//
// Instead of a store-side aggregation pipeline, each view is a handful of
// explicit repository queries combined here — one query per related
// collection, with the counting and membership logic visible in application
// code.
type ProfileService struct {
	users  repository.UserRepository
	subs   repository.SubscriptionRepository
	videos repository.VideoRepository
	logger *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	videos repository.VideoRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:  users,
		subs:   subs,
		videos: videos,
		logger: logger,
	}
}

// ChannelProfile resolves a channel by username and decorates it with
// subscription counts and whether viewerID is among its subscribers.
// viewerID is the authenticated caller.
func (s *ProfileService) ChannelProfile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	// Usernames are stored lowercased; normalize here so /c/Ada finds the
	// channel registered as Ada.
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subs.CountForChannel(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to count subscribers", err)
	}

	subscribedTo, err := s.subs.CountForSubscriber(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to count subscriptions", err)
	}

	isSubscribed, err := s.subs.IsSubscribed(ctx, user.ID, viewerID)
	if err != nil {
		return nil, apperror.Internal("failed to check subscription", err)
	}

	return &model.ChannelProfile{
		ID:                         user.ID,
		Username:                   user.Username,
		FullName:                   user.FullName,
		AvatarURL:                  user.AvatarURL,
		CoverImageURL:              user.CoverImageURL,
		SubscriptionCount:          subscribers,
		ChannelSubscriberedToCount: subscribedTo,
		IsSubscribed:               isSubscribed,
	}, nil
}

// WatchHistory returns the user's watched videos in watch order, each with
// its owner projected down to public fields.
func (s *ProfileService) WatchHistory(ctx context.Context, userID string) ([]model.Video, error) {
	videos, err := s.videos.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load watch history", err)
	}
	return videos, nil
}
