package sqlite

import (
	"context"
)

type followsRepo struct {
	db dbtx
}

func (r *followsRepo) Follow(ctx context.Context, followerID, followedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO followers (follower_id, followed_id) VALUES (?, ?)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	return mapConstraint(err)
}

func (r *followsRepo) Unfollow(ctx context.Context, followerID, followedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID,
	)
	return err
}

func (r *followsRepo) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM followers WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID,
	).Scan(&n)
	return n > 0, err
}

func (r *followsRepo) CountFollowers(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM followers WHERE followed_id = ?`, userID)
}

func (r *followsRepo) CountFollowing(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM followers WHERE follower_id = ?`, userID)
}

func (r *followsRepo) count(ctx context.Context, q string, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
