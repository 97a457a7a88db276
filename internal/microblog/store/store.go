package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrReference is returned when a foreign key points at a missing row.
	ErrReference = errors.New("store: referenced row missing")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose one sub-repository per table so
// callers can't start a transaction from inside another one.
type Store interface {
	Users() Users
	Posts() Posts
	Follows() Follows

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Page bounds a listing query. A zero Limit returns every row.
type Page struct {
	Limit  int
	Offset int
}

// NewPage converts a 1-based page number into a Page of perPage rows.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return Page{}
	}
	return Page{Limit: perPage, Offset: (page - 1) * perPage}
}

type Users interface {
	// CreateUser inserts u and returns the assigned id. Duplicate username
	// or email gives ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateProfile sets username and about_me.
	UpdateProfile(ctx context.Context, id int64, username, aboutMe string) error

	// UpdatePasswordHash overwrites the stored argon2id hash.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// TouchLastSeen sets last_seen to at.
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
}

type Posts interface {
	// CreatePost inserts p and returns the assigned id. An unknown author
	// gives ErrReference.
	CreatePost(ctx context.Context, p domain.Post) (int64, error)

	// Timeline returns the posts written by userID or by anyone userID
	// follows, newest first (ties by id, newest first).
	Timeline(ctx context.Context, userID int64, page Page) ([]domain.Post, error)

	// PostsByUser returns one author's posts, newest first.
	PostsByUser(ctx context.Context, userID int64, page Page) ([]domain.Post, error)

	// AllPosts returns every post, newest first.
	AllPosts(ctx context.Context, page Page) ([]domain.Post, error)
}

type Follows interface {
	// Follow adds the edge follower -> followed. Adding an existing edge
	// is a no-op.
	Follow(ctx context.Context, followerID, followedID int64) error

	// Unfollow removes the edge. Removing a missing edge is a no-op.
	Unfollow(ctx context.Context, followerID, followedID int64) error

	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)

	// CountFollowers counts edges pointing at userID.
	CountFollowers(ctx context.Context, userID int64) (int, error)

	// CountFollowing counts edges leaving userID.
	CountFollowing(ctx context.Context, userID int64) (int, error)
}
