package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arjun-saseendran/video-stack/internal/model"
	"github.com/arjun-saseendran/video-stack/internal/repository"
)

var _ repository.VideoRepository = (*VideoRepo)(nil)

// VideoRepo reads the videos collection and the per-user watch history.
type VideoRepo struct {
	conn *sql.DB
}

// WatchHistory resolves the user's ordered watch-history references into
// video records, each carrying its owner projected down to fullname,
// username and avatar.
//
// One join query instead of N owner lookups; the owner's credentials never
// appear in the select list, so there is nothing to scrub afterwards.
func (r *VideoRepo) WatchHistory(ctx context.Context, userID string) ([]model.Video, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT v.id, v.owner_id, v.title, v.description, v.video_url,
		        v.thumbnail_url, v.duration, v.views, v.created_at,
		        u.full_name, u.username, u.avatar_url
		 FROM watch_history h
		 JOIN videos v ON v.id = h.video_id
		 JOIN users u  ON u.id = v.owner_id
		 WHERE h.user_id = ?
		 ORDER BY h.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying watch history for %s: %w", userID, err)
	}
	defer rows.Close()

	videos := []model.Video{}
	for rows.Next() {
		var v model.Video
		var owner model.VideoOwner
		if err := rows.Scan(
			&v.ID,
			&v.OwnerID,
			&v.Title,
			&v.Description,
			&v.VideoURL,
			&v.ThumbnailURL,
			&v.Duration,
			&v.Views,
			&v.CreatedAt,
			&owner.FullName,
			&owner.Username,
			&owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning watch history row: %w", err)
		}
		v.Owner = &owner
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating watch history: %w", err)
	}
	return videos, nil
}

// AppendWatchHistory adds a video to the end of the user's history.
// Position is MAX+1 so the sequence order is explicit, not timestamp-based.
func (r *VideoRepo) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	var next sql.NullInt64
	err := r.conn.QueryRowContext(ctx,
		`SELECT MAX(position) + 1 FROM watch_history WHERE user_id = ?`, userID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("sqlite: finding next history position for %s: %w", userID, err)
	}

	pos := int64(0)
	if next.Valid {
		pos = next.Int64
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO watch_history (user_id, video_id, position) VALUES (?, ?, ?)`,
		userID, videoID, pos,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending watch history for %s: %w", userID, err)
	}
	return nil
}
