package postgres

import "context"

type followsRepo struct {
	q querier
}

func (r *followsRepo) Follow(ctx context.Context, followerID, followedID int64) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO followers (follower_id, followed_id) VALUES ($1, $2)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	return mapConstraint(err)
}

func (r *followsRepo) Unfollow(ctx context.Context, followerID, followedID int64) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`, followerID, followedID)
	return err
}

func (r *followsRepo) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID,
	).Scan(&ok)
	return ok, err
}

func (r *followsRepo) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM followers WHERE followed_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *followsRepo) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM followers WHERE follower_id = $1`, userID).Scan(&n)
	return n, err
}
