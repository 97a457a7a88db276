package microblogsdk

import "time"

// ============================================================================
// Common Types
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is a short machine-readable code (e.g. "not_found")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}

// ============================================================================
// Accounts & Authentication
// ============================================================================

// RegisterRequest is the body of POST /v1/users.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int `json:"expires_in"`
}

// PasswordResetRequest is the body of POST /v1/auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest is the body of POST /v1/auth/password-reset/confirm.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ============================================================================
// Users
// ============================================================================

// UpdateProfileRequest is the body of PATCH /v1/me.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	AboutMe  string `json:"about_me"`
}

// UserResponse describes a user profile. Email is only present on /v1/me.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AboutMe   string    `json:"about_me"`
	AvatarURL string    `json:"avatar_url"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`

	Followers int `json:"followers"`
	Following int `json:"following"`

	// IsFollowing is set when another user's profile is viewed
	IsFollowing *bool `json:"is_following,omitempty"`
}

// ============================================================================
// Posts
// ============================================================================

// CreatePostRequest is the body of POST /v1/posts.
type CreatePostRequest struct {
	Body     string `json:"body"`
	Language string `json:"language,omitempty"`
}

// PostResponse is a single post.
type PostResponse struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Author    string    `json:"author"`
	Language  string    `json:"language,omitempty"`
}

// PostPageResponse is one page of posts, newest first.
type PostPageResponse struct {
	Posts   []PostResponse `json:"posts"`
	Page    int            `json:"page"`
	HasNext bool           `json:"has_next"`
	HasPrev bool           `json:"has_prev"`
}

// ============================================================================
// Translation
// ============================================================================

// TranslateRequest is the body of POST /v1/translate.
type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	DestLanguage   string `json:"dest_language"`
}

// TranslateResponse carries the translated text, or the provider failure
// message.
type TranslateResponse struct {
	Text string `json:"text"`
}
