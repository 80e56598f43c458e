package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arjun-saseendran/video-stack/internal/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo reads the subscriptions collection. This service never
// writes it — subscribe/unsubscribe belongs to the subscriptions service.
type SubscriptionRepo struct {
	conn *sql.DB
}

func (r *SubscriptionRepo) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	var n int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = ?`, channelID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting subscribers of %s: %w", channelID, err)
	}
	return n, nil
}

func (r *SubscriptionRepo) CountForSubscriber(ctx context.Context, subscriberID string) (int64, error) {
	var n int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ?`, subscriberID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting subscriptions of %s: %w", subscriberID, err)
	}
	return n, nil
}

func (r *SubscriptionRepo) IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error) {
	if subscriberID == "" {
		// Anonymous viewer — membership test is trivially false.
		return false, nil
	}
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = ? AND subscriber_id = ?`,
		channelID, subscriberID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking subscription %s->%s: %w", subscriberID, channelID, err)
	}
	return n > 0, nil
}
