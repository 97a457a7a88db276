package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

// DefaultPostsPerPage is used when a service has no PerPage set.
const DefaultPostsPerPage = 25

type PostService struct {
	Store   store.Store
	PerPage int

	// Now defaults to time.Now.
	Now func() time.Time
}

// CreatePost stores a new post by userID stamped with the current UTC time.
func (s *PostService) CreatePost(ctx context.Context, userID int64, body, language string) (domain.Post, error) {
	log := slogx.FromContext(ctx)

	body, language, err := normalizePost(body, language)
	if err != nil {
		return domain.Post{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	author, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Post{}, ErrUserNotFound
		}
		return domain.Post{}, err
	}

	post := domain.Post{
		Body:      body,
		Timestamp: now().UTC(),
		UserID:    userID,
		Language:  language,
		Author:    author.Username,
	}

	post.ID, err = s.Store.Posts().CreatePost(ctx, post)
	if err != nil {
		if errors.Is(err, store.ErrReference) {
			return domain.Post{}, ErrUserNotFound
		}
		log.Error("failed to create post", slog.Any("error", err))
		return domain.Post{}, err
	}

	log.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("user_id", userID),
		slog.String("language", language),
	)
	return post, nil
}

// UserPosts lists one author's posts, newest first.
func (s *PostService) UserPosts(ctx context.Context, userID int64, page int) (domain.PostPage, error) {
	return paginate(page, s.PerPage, func(p store.Page) ([]domain.Post, error) {
		return s.Store.Posts().PostsByUser(ctx, userID, p)
	})
}

// Explore lists every post, newest first.
func (s *PostService) Explore(ctx context.Context, page int) (domain.PostPage, error) {
	return paginate(page, s.PerPage, func(p store.Page) ([]domain.Post, error) {
		return s.Store.Posts().AllPosts(ctx, p)
	})
}

// paginate fetches one extra row to learn whether a next page exists.
func paginate(page, perPage int, fetch func(store.Page) ([]domain.Post, error)) (domain.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPostsPerPage
	}

	p := store.NewPage(page, perPage)
	p.Limit++

	posts, err := fetch(p)
	if err != nil {
		return domain.PostPage{}, err
	}

	hasNext := len(posts) > perPage
	if hasNext {
		posts = posts[:perPage]
	}

	return domain.PostPage{
		Posts:   posts,
		Page:    page,
		HasNext: hasNext,
		HasPrev: page > 1,
	}, nil
}
