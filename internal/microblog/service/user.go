package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

type UserService struct {
	Store       store.Store
	Credentials *CredentialService

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an account. The password is hashed before the
// transaction opens so the slow argon2 run doesn't hold a write lock.
func (s *UserService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 1. Validate input
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return domain.User{}, err
	}

	// 2. Hash the password
	hash, err := s.Credentials.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		LastSeen:     now,
		CreatedAt:    now,
	}

	// 3. Check uniqueness and insert atomically
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		id, err := tx.Users().CreateUser(ctx, user)
		if err != nil {
			return err
		}
		user.ID = id
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrEmailTaken) {
			log.Error("failed to register user", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// GetUserByID loads a user by numeric identity. It is the lookup the HTTP
// layer uses to materialize the current user from a verified token.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile changes the username and about text. Keeping the current
// username is always allowed.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, username, aboutMe string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	aboutMe = strings.TrimSpace(aboutMe)

	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := validateAboutMe(aboutMe); err != nil {
		return domain.User{}, err
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if username != current.Username {
			if _, err := tx.Users().GetUserByUsername(ctx, username); err == nil {
				return ErrUsernameTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		if err := tx.Users().UpdateProfile(ctx, userID, username, aboutMe); err != nil {
			return err
		}

		current.Username = username
		current.AboutMe = aboutMe
		updated = current
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("profile updated", slog.Int64("user_id", userID))
	return updated, nil
}

// TouchLastSeen records activity for userID.
func (s *UserService) TouchLastSeen(ctx context.Context, userID int64) error {
	err := s.Store.Users().TouchLastSeen(ctx, userID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
