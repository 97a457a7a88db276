package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

// SocialService maintains the directed follow graph. Follow and Unfollow are
// idempotent. Following yourself is allowed and has no visible effect on the
// timeline, which already includes your own posts.
type SocialService struct {
	Store store.Store
}

// Follow adds actor -> target unless the edge already exists.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID int64) error {
	log := slogx.FromContext(ctx)

	added := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ensureUser(ctx, tx, targetID); err != nil {
			return err
		}

		following, err := tx.Follows().IsFollowing(ctx, actorID, targetID)
		if err != nil || following {
			return err
		}

		if err := tx.Follows().Follow(ctx, actorID, targetID); err != nil {
			if errors.Is(err, store.ErrReference) {
				return ErrUserNotFound
			}
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return err
	}

	if added {
		log.Info("followed",
			slog.Int64("follower_id", actorID),
			slog.Int64("followed_id", targetID),
		)
	}
	return nil
}

// Unfollow removes actor -> target if present.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID int64) error {
	log := slogx.FromContext(ctx)

	removed := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ensureUser(ctx, tx, targetID); err != nil {
			return err
		}

		following, err := tx.Follows().IsFollowing(ctx, actorID, targetID)
		if err != nil || !following {
			return err
		}

		if err := tx.Follows().Unfollow(ctx, actorID, targetID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		log.Info("unfollowed",
			slog.Int64("follower_id", actorID),
			slog.Int64("followed_id", targetID),
		)
	}
	return nil
}

func (s *SocialService) IsFollowing(ctx context.Context, actorID, targetID int64) (bool, error) {
	return s.Store.Follows().IsFollowing(ctx, actorID, targetID)
}

func (s *SocialService) FollowerCount(ctx context.Context, userID int64) (int, error) {
	return s.Store.Follows().CountFollowers(ctx, userID)
}

func (s *SocialService) FollowingCount(ctx context.Context, userID int64) (int, error) {
	return s.Store.Follows().CountFollowing(ctx, userID)
}

func ensureUser(ctx context.Context, st store.Store, id int64) error {
	_, err := st.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
