package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	httpapi "github.com/aussiebroadwan/microblog/internal/microblog/http"
	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/internal/microblog/store/drivers/sqlite"
	"github.com/aussiebroadwan/microblog/pkg/cryptox"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "router-test-secret"
	testIssuer   = "microblog-test"
	testPassword = "correct horse"
)

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, src, dst string) string {
	return "[" + src + "->" + dst + "] " + text
}

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, user domain.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[user.Email] = token
	return nil
}

func (m *captureMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type testEnv struct {
	client *microblogsdk.Client
	mailer *captureMailer
	url    string
}

func newTestEnv(t *testing.T, limits httpx.RateLimitProfiles) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256([]byte(testSecret), testIssuer)
	require.NoError(t, err)

	mailer := &captureMailer{tokens: map[string]string{}}
	creds := &service.CredentialService{
		Store:    st,
		Hasher:   cryptox.NewPasswordHasher("test-pepper"),
		Signer:   signer,
		Verifier: verifier,
		Mailer:   mailer,
		Issuer:   testIssuer,
	}

	router := httpapi.NewRouter(verifier, limits, "test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.UserService = &service.UserService{Store: st, Credentials: creds}
	router.CredentialService = creds
	router.SocialService = &service.SocialService{Store: st}
	router.PostService = &service.PostService{Store: st, PerPage: 2}
	router.TimelineService = &service.TimelineService{Store: st, PerPage: 2}
	router.Translator = fakeTranslator{}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{client: microblogsdk.NewClient(srv.URL), mailer: mailer, url: srv.URL}
}

func (e *testEnv) signup(t *testing.T, name string) *microblogsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Register(ctx, microblogsdk.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	s, err := e.client.Login(ctx, name, testPassword)
	require.NoError(t, err)
	return s
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *microblogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()

	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()

	user, err := env.client.Register(ctx, microblogsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
	require.Contains(t, user.AvatarURL, "gravatar.com")

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.client.Register(ctx, microblogsdk.RegisterRequest{Username: "alice", Email: "other@example.com", Password: testPassword})
		requireAPIError(t, err, http.StatusConflict, microblogsdk.ErrorCodeConflict)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := env.client.Register(ctx, microblogsdk.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"})
		requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.client.Login(ctx, "alice", "wrong password")
		requireAPIError(t, err, http.StatusUnauthorized, microblogsdk.ErrorCodeInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.client.Login(ctx, "nobody", testPassword)
		requireAPIError(t, err, http.StatusUnauthorized, microblogsdk.ErrorCodeInvalidCredentials)
	})

	t.Run("login", func(t *testing.T) {
		s, err := env.client.Login(ctx, "alice", testPassword)
		require.NoError(t, err)

		me, err := s.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, user.ID, me.ID)
		require.Equal(t, "alice@example.com", me.Email)
		require.Nil(t, me.IsFollowing)
	})
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})

	resp, err := http.Post(env.url+"/v1/users", "application/json", strings.NewReader(`{"username":"alice","extra":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBearerRequired(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()

	_, err := env.client.NewSession("").Me(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_token")

	_, err = env.client.NewSession("not-a-jwt").Timeline(ctx, 1)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_token")
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	env.signup(t, "alice")

	// Unknown addresses get the same answer
	require.NoError(t, env.client.RequestPasswordReset(ctx, "nobody@example.com"))

	require.NoError(t, env.client.RequestPasswordReset(ctx, "alice@example.com"))
	token := env.mailer.token("alice@example.com")
	require.NotEmpty(t, token)

	err := env.client.ConfirmPasswordReset(ctx, "garbage", "new password 1")
	requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidToken)

	require.NoError(t, env.client.ConfirmPasswordReset(ctx, token, "new password 1"))

	_, err = env.client.Login(ctx, "alice", testPassword)
	requireAPIError(t, err, http.StatusUnauthorized, microblogsdk.ErrorCodeInvalidCredentials)

	_, err = env.client.Login(ctx, "alice", "new password 1")
	require.NoError(t, err)
}

func TestFollowAndProfile(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	alice := env.signup(t, "alice")
	env.signup(t, "bob")

	bob, err := alice.GetUser(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, bob.IsFollowing)
	require.False(t, *bob.IsFollowing)
	require.Empty(t, bob.Email, "email is private")

	require.NoError(t, alice.Follow(ctx, "bob"))
	require.NoError(t, alice.Follow(ctx, "bob"))

	bob, err = alice.GetUser(ctx, "bob")
	require.NoError(t, err)
	require.True(t, *bob.IsFollowing)
	require.Equal(t, 1, bob.Followers)

	me, err := alice.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, me.Following)

	require.NoError(t, alice.Unfollow(ctx, "bob"))
	require.NoError(t, alice.Unfollow(ctx, "bob"))

	bob, err = alice.GetUser(ctx, "bob")
	require.NoError(t, err)
	require.False(t, *bob.IsFollowing)
	require.Zero(t, bob.Followers)

	_, err = alice.GetUser(ctx, "ghost")
	require.True(t, microblogsdk.IsNotFound(err))
	require.True(t, microblogsdk.IsNotFound(alice.Follow(ctx, "ghost")))
}

func TestTimelineAndExplore(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	a := env.signup(t, "a")
	b := env.signup(t, "b")
	c := env.signup(t, "c")

	post := func(s *microblogsdk.Session, body string) {
		t.Helper()
		_, err := s.CreatePost(ctx, microblogsdk.CreatePostRequest{Body: body, Language: "en"})
		require.NoError(t, err)
		// Distinct timestamps keep the order independent of id tie-breaks
		time.Sleep(5 * time.Millisecond)
	}

	post(a, "P1")
	post(b, "P2")
	post(c, "P3")
	post(a, "P4")
	require.NoError(t, a.Follow(ctx, "b"))

	page, err := a.Timeline(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"P4", "P2"}, postBodies(page))
	require.True(t, page.HasNext)
	require.False(t, page.HasPrev)

	page, err = a.Timeline(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"P1"}, postBodies(page))
	require.False(t, page.HasNext)
	require.True(t, page.HasPrev)

	page, err = c.Explore(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"P4", "P3"}, postBodies(page))

	page, err = c.UserPosts(ctx, "a", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"P4", "P1"}, postBodies(page))
	require.Equal(t, "a", page.Posts[0].Author)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	s := env.signup(t, "alice")

	_, err := s.CreatePost(ctx, microblogsdk.CreatePostRequest{Body: "   "})
	requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest)

	_, err = s.CreatePost(ctx, microblogsdk.CreatePostRequest{Body: strings.Repeat("x", domain.MaxPostLen+1)})
	requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest)

	p, err := s.CreatePost(ctx, microblogsdk.CreatePostRequest{Body: "  hello  ", Language: "en"})
	require.NoError(t, err)
	require.Equal(t, "hello", p.Body)
	require.Equal(t, "alice", p.Author)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	alice := env.signup(t, "alice")
	env.signup(t, "bob")

	me, err := alice.UpdateProfile(ctx, microblogsdk.UpdateProfileRequest{Username: "alice2", AboutMe: "hi"})
	require.NoError(t, err)
	require.Equal(t, "alice2", me.Username)
	require.Equal(t, "hi", me.AboutMe)

	_, err = alice.UpdateProfile(ctx, microblogsdk.UpdateProfileRequest{Username: "bob"})
	requireAPIError(t, err, http.StatusConflict, microblogsdk.ErrorCodeConflict)

	_, err = alice.UpdateProfile(ctx, microblogsdk.UpdateProfileRequest{Username: "alice2", AboutMe: strings.Repeat("x", domain.MaxAboutMeLen+1)})
	requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest)
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t, httpx.RateLimitProfiles{})
	ctx := context.Background()
	s := env.signup(t, "alice")

	out, err := s.Translate(ctx, microblogsdk.TranslateRequest{Text: "hola", SourceLanguage: "es", DestLanguage: "en"})
	require.NoError(t, err)
	require.Equal(t, "[es->en] hola", out.Text)

	_, err = s.Translate(ctx, microblogsdk.TranslateRequest{Text: "hola"})
	requireAPIError(t, err, http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest)
}

func TestLoginRateLimited(t *testing.T) {
	limits := httpx.RateLimitProfiles{
		Strict: httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2},
	}
	env := newTestEnv(t, limits)
	ctx := context.Background()

	for range 2 {
		_, err := env.client.Login(ctx, "alice", "wrong password")
		requireAPIError(t, err, http.StatusUnauthorized, microblogsdk.ErrorCodeInvalidCredentials)
	}

	_, err := env.client.Login(ctx, "alice", "wrong password")
	requireAPIError(t, err, http.StatusTooManyRequests, microblogsdk.ErrorCodeRateLimited)

	// A different username has its own bucket
	_, err = env.client.Login(ctx, "bob", "wrong password")
	requireAPIError(t, err, http.StatusUnauthorized, microblogsdk.ErrorCodeInvalidCredentials)
}

func postBodies(page *microblogsdk.PostPageResponse) []string {
	out := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		out = append(out, p.Body)
	}
	return out
}
