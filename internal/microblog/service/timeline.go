package service

import (
	"context"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
)

// TimelineService answers "what should this user see": their own posts
// plus those of everyone they follow, newest first.
type TimelineService struct {
	Store   store.Store
	PerPage int
}

// Timeline returns the whole timeline for userID.
func (s *TimelineService) Timeline(ctx context.Context, userID int64) ([]domain.Post, error) {
	return s.Store.Posts().Timeline(ctx, userID, store.Page{})
}

// TimelinePage returns one page of the timeline.
func (s *TimelineService) TimelinePage(ctx context.Context, userID int64, page int) (domain.PostPage, error) {
	return paginate(page, s.PerPage, func(p store.Page) ([]domain.Post, error) {
		return s.Store.Posts().Timeline(ctx, userID, p)
	})
}
