package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(secret, "microblog")
	require.NoError(t, err)

	var gotID int64
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.UserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusOK)
	}))

	call := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid access token", func(t *testing.T) {
		tok, err := signer.Sign(jwtx.NewAccessClaims(7, "alice", "microblog", time.Hour, time.Now()))
		require.NoError(t, err)

		rec := call("Bearer " + tok)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(7), gotID)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := call("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("reset token is not a session", func(t *testing.T) {
		tok, err := signer.Sign(jwtx.NewResetClaims(7, "microblog", time.Hour, time.Now()))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, call("Bearer "+tok).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := signer.Sign(jwtx.NewAccessClaims(7, "alice", "microblog", time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, call("Bearer "+tok).Code)
	})

	t.Run("garbage", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, call("Bearer not.a.jwt").Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(s string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	b, err := decode(`{"name":"alice"}`)
	require.NoError(t, err)
	require.Equal(t, "alice", b.Name)

	_, err = decode(`{"name":"alice","admin":true}`)
	require.Error(t, err, "unknown fields rejected")

	_, err = decode(`{"name":"a"}{"name":"b"}`)
	require.Error(t, err, "trailing data rejected")
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&neg=-1", nil)
	require.Equal(t, 3, httpx.QueryInt(req, "page", 1))
	require.Equal(t, 1, httpx.QueryInt(req, "bad", 1))
	require.Equal(t, 1, httpx.QueryInt(req, "neg", 1))
	require.Equal(t, 1, httpx.QueryInt(req, "missing", 1))
}
