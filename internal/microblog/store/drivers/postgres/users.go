package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, about_me, last_seen, created_at`

type usersRepo struct {
	q querier
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AboutMe, &u.LastSeen, &u.CreatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.LastSeen = u.LastSeen.UTC()
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, about_me, last_seen, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.AboutMe, u.LastSeen.UTC(), u.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id int64, username, aboutMe string) error {
	return requireRow(r.q.Exec(ctx,
		`UPDATE users SET username = $1, about_me = $2 WHERE id = $3`, username, aboutMe, id))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return requireRow(r.q.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id))
}

func (r *usersRepo) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	return requireRow(r.q.Exec(ctx, `UPDATE users SET last_seen = $1 WHERE id = $2`, at.UTC(), id))
}
