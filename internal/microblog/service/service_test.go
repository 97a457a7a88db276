package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/internal/microblog/store/drivers/sqlite"
	"github.com/aussiebroadwan/microblog/pkg/cryptox"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-key"
	testIssuer   = "microblog-test"
	testPassword = "correct horse"
)

type recordingMailer struct {
	user  domain.User
	token string
	calls int
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, user domain.User, token string) error {
	m.user = user
	m.token = token
	m.calls++
	return nil
}

type services struct {
	store    store.Store
	creds    *CredentialService
	users    *UserService
	social   *SocialService
	posts    *PostService
	timeline *TimelineService
	mailer   *recordingMailer
}

func newTestServices(t *testing.T) *services {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256([]byte(testSecret), testIssuer)
	require.NoError(t, err)

	mailer := &recordingMailer{}
	creds := &CredentialService{
		Store:    st,
		Hasher:   cryptox.NewPasswordHasher("test-pepper"),
		Signer:   signer,
		Verifier: verifier,
		Mailer:   mailer,
		Issuer:   testIssuer,
	}

	return &services{
		store:    st,
		creds:    creds,
		users:    &UserService{Store: st, Credentials: creds},
		social:   &SocialService{Store: st},
		posts:    &PostService{Store: st},
		timeline: &TimelineService{Store: st},
		mailer:   mailer,
	}
}

func (s *services) register(t *testing.T, name string) domain.User {
	t.Helper()
	u, err := s.users.Register(context.Background(), name, name+"@example.com", testPassword)
	require.NoError(t, err)
	return u
}

// postAt creates a post with a pinned timestamp.
func (s *services) postAt(t *testing.T, author int64, body string, at time.Time) domain.Post {
	t.Helper()
	s.posts.Now = func() time.Time { return at }
	p, err := s.posts.CreatePost(context.Background(), author, body, "en")
	require.NoError(t, err)
	return p
}

func bodies(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Body)
	}
	return out
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	u := s.register(t, "alice")
	require.Positive(t, u.ID)
	require.NotEmpty(t, u.PasswordHash)
	require.NotContains(t, u.PasswordHash, testPassword)
	require.False(t, u.LastSeen.IsZero())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.users.Register(ctx, "alice", "other@example.com", testPassword)
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.users.Register(ctx, "alice2", "alice@example.com", testPassword)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name, username, email, password string
			want                            error
		}{
			{"empty username", "", "x@example.com", testPassword, ErrInvalidUsername},
			{"spaces in username", "a b", "x@example.com", testPassword, ErrInvalidUsername},
			{"long username", strings.Repeat("a", 65), "x@example.com", testPassword, ErrInvalidUsername},
			{"bad email", "bob", "not-an-email", testPassword, ErrInvalidEmail},
			{"display name email", "bob", "Bob <bob@example.com>", testPassword, ErrInvalidEmail},
			{"short password", "bob", "bob@example.com", "short", ErrInvalidPassword},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.users.Register(ctx, tt.username, tt.email, tt.password)
				require.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestPasswords(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	u := s.register(t, "alice")

	require.True(t, s.creds.CheckPassword(u, testPassword))
	require.False(t, s.creds.CheckPassword(u, "wrong password"))

	t.Run("reset then check", func(t *testing.T) {
		require.NoError(t, s.creds.SetPassword(ctx, u.ID, "new password!"))

		fresh, err := s.users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, s.creds.CheckPassword(fresh, "new password!"))
		require.False(t, s.creds.CheckPassword(fresh, testPassword))
	})

	t.Run("no hash never matches", func(t *testing.T) {
		require.False(t, s.creds.CheckPassword(domain.User{}, ""))
		require.False(t, s.creds.CheckPassword(domain.User{}, testPassword))
	})

	t.Run("malformed hash never matches", func(t *testing.T) {
		require.False(t, s.creds.CheckPassword(domain.User{PasswordHash: "not-a-hash"}, testPassword))
	})

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, s.creds.SetPassword(ctx, 9999, "whatever123"), ErrUserNotFound)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	u := s.register(t, "alice")

	got, err := s.creds.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.creds.Authenticate(ctx, "alice", "nope nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.creds.Authenticate(ctx, "nobody", testPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, exp, err := s.creds.IssueAccessToken(got)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(jwtx.DefaultAccessTokenTTL), exp, time.Minute)

	claims, err := s.creds.Verifier.Verify(token)
	require.NoError(t, err)
	require.NoError(t, claims.ValidatePurpose(jwtx.PurposeAccess))
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, u.ID, id)
}

func TestResetTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	u := s.register(t, "alice")

	t.Run("round trip", func(t *testing.T) {
		token, err := s.creds.IssueResetToken(u, 0)
		require.NoError(t, err)

		got, ok := s.creds.VerifyResetToken(ctx, token)
		require.True(t, ok)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("expired", func(t *testing.T) {
		s.creds.Now = func() time.Time { return time.Now().Add(-time.Hour) }
		t.Cleanup(func() { s.creds.Now = nil })

		token, err := s.creds.IssueResetToken(u, 600*time.Second)
		require.NoError(t, err)

		_, ok := s.creds.VerifyResetToken(ctx, token)
		require.False(t, ok)
	})

	t.Run("tampered", func(t *testing.T) {
		token, err := s.creds.IssueResetToken(u, 0)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, ok := s.creds.VerifyResetToken(ctx, tampered)
		require.False(t, ok)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other, err := jwtx.NewSignerHS256([]byte("another-secret"))
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewResetClaims(u.ID, testIssuer, time.Minute, time.Now()))
		require.NoError(t, err)

		_, ok := s.creds.VerifyResetToken(ctx, token)
		require.False(t, ok)
	})

	t.Run("malformed", func(t *testing.T) {
		_, ok := s.creds.VerifyResetToken(ctx, "garbage")
		require.False(t, ok)
	})

	t.Run("access token is not a reset token", func(t *testing.T) {
		token, _, err := s.creds.IssueAccessToken(u)
		require.NoError(t, err)

		_, ok := s.creds.VerifyResetToken(ctx, token)
		require.False(t, ok)
	})

	t.Run("missing user", func(t *testing.T) {
		token, err := s.creds.Signer.Sign(jwtx.NewResetClaims(9999, testIssuer, time.Minute, time.Now()))
		require.NoError(t, err)

		_, ok := s.creds.VerifyResetToken(ctx, token)
		require.False(t, ok)
	})
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	u := s.register(t, "alice")

	t.Run("unknown email is silent", func(t *testing.T) {
		require.NoError(t, s.creds.RequestPasswordReset(ctx, "nobody@example.com"))
		require.Zero(t, s.mailer.calls)
	})

	require.NoError(t, s.creds.RequestPasswordReset(ctx, "alice@example.com"))
	require.Equal(t, 1, s.mailer.calls)
	require.Equal(t, u.ID, s.mailer.user.ID)

	require.ErrorIs(t, s.creds.ResetPassword(ctx, "garbage", "brand new pw"), ErrInvalidResetToken)
	require.ErrorIs(t, s.creds.ResetPassword(ctx, s.mailer.token, "short"), ErrInvalidPassword)

	require.NoError(t, s.creds.ResetPassword(ctx, s.mailer.token, "brand new pw"))

	_, err := s.creds.Authenticate(ctx, "alice", "brand new pw")
	require.NoError(t, err)
	_, err = s.creds.Authenticate(ctx, "alice", testPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFollowIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "a")
	b := s.register(t, "b")

	require.NoError(t, s.social.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.social.Follow(ctx, a.ID, b.ID))

	ok, err := s.social.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.social.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n, "double follow leaves one edge")

	n, err = s.social.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.social.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, s.social.Unfollow(ctx, a.ID, b.ID))

	ok, err = s.social.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, s.social.Follow(ctx, a.ID, 9999), ErrUserNotFound)
	require.ErrorIs(t, s.social.Unfollow(ctx, a.ID, 9999), ErrUserNotFound)
}

func TestSelfFollowAllowed(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "a")

	require.NoError(t, s.social.Follow(ctx, a.ID, a.ID))

	ok, err := s.social.IsFollowing(ctx, a.ID, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	s.postAt(t, a.ID, "mine", time.Now())
	posts, err := s.timeline.Timeline(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"mine"}, bodies(posts), "own posts appear once")
}

func TestTimelineScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "a")
	b := s.register(t, "b")

	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)

	s.postAt(t, b.ID, "P1", t1)
	s.postAt(t, a.ID, "P2", t3)
	s.postAt(t, b.ID, "P3", t2)

	t.Run("before following only own posts", func(t *testing.T) {
		posts, err := s.timeline.Timeline(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"P2"}, bodies(posts))
	})

	require.NoError(t, s.social.Follow(ctx, a.ID, b.ID))

	posts, err := s.timeline.Timeline(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"P2", "P3", "P1"}, bodies(posts))

	t.Run("follower's posts don't flow backwards", func(t *testing.T) {
		posts, err := s.timeline.Timeline(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"P3", "P1"}, bodies(posts))
	})

	t.Run("paged", func(t *testing.T) {
		s.timeline.PerPage = 2
		t.Cleanup(func() { s.timeline.PerPage = 0 })

		first, err := s.timeline.TimelinePage(ctx, a.ID, 1)
		require.NoError(t, err)
		require.Equal(t, []string{"P2", "P3"}, bodies(first.Posts))
		require.True(t, first.HasNext)
		require.False(t, first.HasPrev)

		second, err := s.timeline.TimelinePage(ctx, a.ID, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"P1"}, bodies(second.Posts))
		require.False(t, second.HasNext)
		require.True(t, second.HasPrev)
	})

	t.Run("after unfollow", func(t *testing.T) {
		require.NoError(t, s.social.Unfollow(ctx, a.ID, b.ID))
		posts, err := s.timeline.Timeline(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"P2"}, bodies(posts))
	})
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "a")

	p, err := s.posts.CreatePost(ctx, a.ID, "  hello world  ", "en")
	require.NoError(t, err)
	require.Equal(t, "hello world", p.Body)
	require.Equal(t, "a", p.Author)
	require.Equal(t, time.UTC, p.Timestamp.Location())

	t.Run("multibyte at limit", func(t *testing.T) {
		_, err := s.posts.CreatePost(ctx, a.ID, strings.Repeat("é", 140), "fr")
		require.NoError(t, err)
	})

	tests := []struct {
		name, body, lang string
		want             error
	}{
		{"empty", "", "en", ErrInvalidPost},
		{"whitespace", "   \n\t", "en", ErrInvalidPost},
		{"too long", strings.Repeat("x", 141), "en", ErrInvalidPost},
		{"long language", "hi", "english", ErrInvalidLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.posts.CreatePost(ctx, a.ID, tt.body, tt.lang)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown author", func(t *testing.T) {
		_, err := s.posts.CreatePost(ctx, 9999, "hi", "en")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserPostsAndExplore(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "a")
	b := s.register(t, "b")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.postAt(t, a.ID, "a1", base)
	s.postAt(t, b.ID, "b1", base.Add(time.Second))
	s.postAt(t, a.ID, "a2", base.Add(2*time.Second))

	page, err := s.posts.UserPosts(ctx, a.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "a1"}, bodies(page.Posts))
	require.False(t, page.HasNext)

	all, err := s.posts.Explore(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "b1", "a1"}, bodies(all.Posts))

	empty, err := s.posts.Explore(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, empty.Posts)
	require.True(t, empty.HasPrev)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "alice")
	s.register(t, "bob")

	u, err := s.users.UpdateProfile(ctx, a.ID, "alice", "hi there")
	require.NoError(t, err)
	require.Equal(t, "hi there", u.AboutMe)

	u, err = s.users.UpdateProfile(ctx, a.ID, "alicia", "hi there")
	require.NoError(t, err)
	require.Equal(t, "alicia", u.Username)

	_, err = s.users.GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.users.UpdateProfile(ctx, a.ID, "bob", "")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.users.UpdateProfile(ctx, a.ID, "alicia", strings.Repeat("x", 141))
	require.ErrorIs(t, err, ErrInvalidAboutMe)

	_, err = s.users.UpdateProfile(ctx, 9999, "zed", "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestTouchLastSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := s.register(t, "alice")

	later := time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC)
	s.users.Now = func() time.Time { return later }
	require.NoError(t, s.users.TouchLastSeen(ctx, a.ID))

	u, err := s.users.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, later.Equal(u.LastSeen))

	require.ErrorIs(t, s.users.TouchLastSeen(ctx, 9999), ErrUserNotFound)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := slogx.WithContext(context.Background(), logger)

	m := LogMailer{ResetURL: "https://microblog.example/reset"}
	require.NoError(t, m.SendPasswordReset(ctx, domain.User{ID: 3, Email: "a@example.com"}, "tok/en"))

	require.Contains(t, buf.String(), "password reset link")
	require.Contains(t, buf.String(), "https://microblog.example/reset?token=tok%2Fen")
}
