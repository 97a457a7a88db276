package microblogsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Session makes requests as one logged-in user. Access tokens are not
// refreshed; log in again once it expires.
type Session struct {
	client      *Client
	accessToken string
}

// NewSession wraps an access token obtained elsewhere.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

// AccessToken returns the bearer token used by this session.
func (s *Session) AccessToken() string {
	return s.accessToken
}

func (s *Session) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return s.client.doRequest(ctx, method, path, body, s.accessToken)
}

// Me returns the logged-in user's profile.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the logged-in user's username and about text.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodPatch, "/v1/me", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser returns another user's public profile.
func (s *Session) GetUser(ctx context.Context, username string) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPosts lists a user's posts, newest first.
func (s *Session) UserPosts(ctx context.Context, username string, page int) (*PostPageResponse, error) {
	return s.postPage(ctx, "/v1/users/"+url.PathEscape(username)+"/posts", page)
}

// Follow starts following username. Following twice is not an error.
func (s *Session) Follow(ctx context.Context, username string) error {
	resp, err := s.do(ctx, http.MethodPost, "/v1/users/"+url.PathEscape(username)+"/follow", nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// Unfollow stops following username. Unfollowing twice is not an error.
func (s *Session) Unfollow(ctx context.Context, username string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(username)+"/follow", nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// CreatePost publishes a post.
func (s *Session) CreatePost(ctx context.Context, req CreatePostRequest) (*PostResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/posts", req)
	if err != nil {
		return nil, err
	}

	var post PostResponse
	if err := decodeJSON(resp, &post, http.StatusCreated); err != nil {
		return nil, err
	}
	return &post, nil
}

// Explore lists every post, newest first.
func (s *Session) Explore(ctx context.Context, page int) (*PostPageResponse, error) {
	return s.postPage(ctx, "/v1/posts", page)
}

// Timeline lists the logged-in user's timeline.
func (s *Session) Timeline(ctx context.Context, page int) (*PostPageResponse, error) {
	return s.postPage(ctx, "/v1/timeline", page)
}

// Translate runs text through the service's translation provider. A
// provider failure is not an error; the text carries the failure message.
func (s *Session) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/translate", req)
	if err != nil {
		return nil, err
	}

	var out TranslateResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) postPage(ctx context.Context, path string, page int) (*PostPageResponse, error) {
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}

	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out PostPageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
