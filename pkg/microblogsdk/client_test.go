package microblogsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *microblogsdk.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return microblogsdk.NewClient(srv.URL + "/")
}

func TestGetLiveness(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/livez", r.URL.Path)
		_ = json.NewEncoder(w).Encode(microblogsdk.HealthResponse{Status: "ok"})
	})

	h, err := c.GetLiveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", h.Status)
}

func TestRegisterConflict(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/users", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req microblogsdk.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)

		microblogsdk.NewAPIError(http.StatusConflict, microblogsdk.ErrorCodeConflict, "username already taken").WriteError(w)
	})

	_, err := c.Register(context.Background(), microblogsdk.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "password1"})
	var apiErr *microblogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, microblogsdk.ErrorCodeConflict, apiErr.Code)
	require.Equal(t, "username already taken", apiErr.Description)
}

func TestLoginCreatesSession(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(microblogsdk.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 60})
		case "/v1/me":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(microblogsdk.UserResponse{ID: 1, Username: "alice"})
		default:
			http.NotFound(w, r)
		}
	})

	s, err := c.Login(context.Background(), "alice", "password1")
	require.NoError(t, err)
	require.Equal(t, "tok", s.AccessToken())

	me, err := s.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)
}

func TestSessionPaging(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/timeline", r.URL.Path)
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			page = 1
		}
		_ = json.NewEncoder(w).Encode(microblogsdk.PostPageResponse{Posts: []microblogsdk.PostResponse{}, Page: page, HasPrev: page > 1})
	})
	s := c.NewSession("tok")

	p, err := s.Timeline(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, p.Page)
	require.False(t, p.HasPrev)

	p, err = s.Timeline(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, p.Page)
	require.True(t, p.HasPrev)
}

func TestFollowAndUnfollow(t *testing.T) {
	var calls []string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})
	s := c.NewSession("tok")

	require.NoError(t, s.Follow(context.Background(), "bob smith"))
	require.NoError(t, s.Unfollow(context.Background(), "bob smith"))
	require.Equal(t, []string{
		"POST /v1/users/bob%20smith/follow",
		"DELETE /v1/users/bob%20smith/follow",
	}, calls)
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.NewSession("tok").GetUser(context.Background(), "bob")
	var apiErr *microblogsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, microblogsdk.ErrorCodeServerError, apiErr.Code)
	require.False(t, microblogsdk.IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		microblogsdk.ErrUserNotFound.WriteError(w)
	})

	_, err := c.NewSession("tok").GetUser(context.Background(), "ghost")
	require.True(t, microblogsdk.IsNotFound(err))
}
