package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/aussiebroadwan/microblog/pkg/slogx"

	_ "github.com/aussiebroadwan/microblog/api/microblog" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Translator is the part of translate.Translator the handlers need.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, destLang string) string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	limits       httpx.RateLimitProfiles
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	UserService       *service.UserService
	CredentialService *service.CredentialService
	SocialService     *service.SocialService
	PostService       *service.PostService
	TimelineService   *service.TimelineService
	Translator        Translator
}

func NewRouter(
	verifier jwtx.Verifier,
	limits httpx.RateLimitProfiles,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerPosts()
	r.registerTranslate()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Microblog API
//	@version		0.1.0
//	@description	Users, followers, posts and timelines for a small social blogging service.
//	@description
//	@description				Access tokens are HS256 JWTs returned by /v1/auth/login.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/microblog
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h so it only runs for a valid bearer token whose user still
// exists, rate limited per user.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		CurrentUserMiddleware(r.UserService),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:       r.UserService,
		CredentialService: r.CredentialService,
	}

	// Account creation and credential endpoints are brute-force targets
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	// Limited by IP + username so one noisy client can't lock everyone out
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "username"),
		),
	)

	r.Mux.Handle("POST /v1/auth/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetRequest),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleResetConfirm),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:   r.UserService,
		SocialService: r.SocialService,
		PostService:   r.PostService,
	}

	r.Mux.Handle("GET /v1/me", r.authed(h.HandleMe, r.limits.Lenient))
	r.Mux.Handle("PATCH /v1/me", r.authed(h.HandleUpdateMe, r.limits.Moderate))
	r.Mux.Handle("GET /v1/users/{username}", r.authed(h.HandleGetUser, r.limits.Lenient))
	r.Mux.Handle("GET /v1/users/{username}/posts", r.authed(h.HandleUserPosts, r.limits.Lenient))
	r.Mux.Handle("POST /v1/users/{username}/follow", r.authed(h.HandleFollow, r.limits.Moderate))
	r.Mux.Handle("DELETE /v1/users/{username}/follow", r.authed(h.HandleUnfollow, r.limits.Moderate))
}

func (r *Router) registerPosts() {
	h := &PostsHandler{
		PostService:     r.PostService,
		TimelineService: r.TimelineService,
	}

	r.Mux.Handle("POST /v1/posts", r.authed(h.HandleCreate, r.limits.Moderate))
	r.Mux.Handle("GET /v1/posts", r.authed(h.HandleExplore, r.limits.Lenient))
	r.Mux.Handle("GET /v1/timeline", r.authed(h.HandleTimeline, r.limits.Lenient))
}

func (r *Router) registerTranslate() {
	h := &TranslateHandler{Translator: r.Translator}

	// Each call costs a provider request
	r.Mux.Handle("POST /v1/translate", r.authed(h.ServeHTTP, r.limits.Moderate))
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}
