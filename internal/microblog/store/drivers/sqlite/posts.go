package sqlite

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
)

const postSelect = `SELECT p.id, p.body, p.timestamp, p.user_id, p.language, u.username
FROM posts p JOIN users u ON u.id = p.user_id`

const newestFirst = ` ORDER BY p.timestamp DESC, p.id DESC`

type postsRepo struct {
	db dbtx
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (body, timestamp, user_id, language) VALUES (?, ?, ?, ?)`,
		p.Body, p.Timestamp.UTC(), p.UserID, p.Language,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

// Timeline selects the union of the user's own posts and the posts of
// everyone they follow. The union runs over ids so the outer select keeps
// the declared column types.
func (r *postsRepo) Timeline(ctx context.Context, userID int64, page store.Page) ([]domain.Post, error) {
	q := postSelect + `
WHERE p.id IN (
    SELECT f.id FROM posts f
    JOIN followers fl ON fl.followed_id = f.user_id
    WHERE fl.follower_id = ?
    UNION
    SELECT o.id FROM posts o WHERE o.user_id = ?
)` + newestFirst
	return r.list(ctx, q, page, userID, userID)
}

func (r *postsRepo) PostsByUser(ctx context.Context, userID int64, page store.Page) ([]domain.Post, error) {
	return r.list(ctx, postSelect+` WHERE p.user_id = ?`+newestFirst, page, userID)
}

func (r *postsRepo) AllPosts(ctx context.Context, page store.Page) ([]domain.Post, error) {
	return r.list(ctx, postSelect+newestFirst, page)
}

func (r *postsRepo) list(ctx context.Context, q string, page store.Page, args ...any) ([]domain.Post, error) {
	if page.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(page.Limit) + ` OFFSET ` + strconv.Itoa(max(page.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Body, &p.Timestamp, &p.UserID, &p.Language, &p.Author); err != nil {
			return nil, err
		}
		p.Timestamp = p.Timestamp.UTC()
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
