package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("TRANSLATOR_KEY", "k")

	cfg := LoadConfig()
	require.Equal(t, "s3cret", cfg.SecretKey)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 10*time.Minute, cfg.ResetTokenTTL)
	require.Equal(t, 25, cfg.PostsPerPage)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.RateLimits.Strict.Disabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POSTS_PER_PAGE", "10")
	t.Setenv("RESET_TOKEN_TTL", "30")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg := LoadConfig()
	require.Equal(t, 10, cfg.PostsPerPage)
	require.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	require.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 50, cfg.RateLimits.Strict.RequestsPerWindow)
}

func TestValidate(t *testing.T) {
	valid := Config{SecretKey: "s", TranslatorKey: "k", DatabaseDriver: DriverSQLite}
	require.NoError(t, valid.Validate())

	c := valid
	c.SecretKey = ""
	require.ErrorIs(t, c.Validate(), ErrMissingSecretKey)

	c = valid
	c.TranslatorKey = ""
	require.ErrorIs(t, c.Validate(), ErrMissingTranslatorKey)

	c = valid
	c.DatabaseDriver = DriverPostgres
	require.Error(t, c.Validate())
	c.DatabaseURL = "postgres://localhost/microblog"
	require.NoError(t, c.Validate())

	c = valid
	c.DatabaseDriver = "mysql"
	require.Error(t, c.Validate())
}

func TestNewRefusesMissingSecret(t *testing.T) {
	_, err := New(Config{TranslatorKey: "k", DatabaseDriver: DriverSQLite})
	require.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestNewServesHealth(t *testing.T) {
	dir := t.TempDir()
	application, err := New(Config{
		SecretKey:           "s3cret",
		TranslatorKey:       "k",
		Issuer:              "microblog",
		DatabaseDriver:      DriverSQLite,
		DatabaseFile:        filepath.Join(dir, "microblog.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		LogFormat:           "text",
		LogLevel:            "error",
		ShutdownGracePeriod: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	require.FileExists(t, filepath.Join(dir, "pepper"))

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
