// Package translate calls an external machine translation API. Every
// failure collapses into ErrServiceFailed, which is returned as the
// translated text so callers can display it directly.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

// ErrServiceFailed is the text returned in place of a translation when the
// provider can't be reached or answers with anything but a usable 200.
const ErrServiceFailed = "Error: the translation service failed."

// DefaultBaseURL is the provider endpoint used when none is configured.
const DefaultBaseURL = "https://translate.yandex.net"

const translatePath = "/api/v1.5/tr.json/translate"

var ErrNoKey = errors.New("translate: provider key not configured")

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Translator struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// Option customizes a Translator.
type Option func(*Translator)

// WithBaseURL points the translator at another provider host.
func WithBaseURL(u string) Option {
	return func(t *Translator) {
		if u != "" {
			t.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient replaces the default client (10 s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(t *Translator) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// New returns a Translator for the given provider key.
func New(key string, opts ...Option) (*Translator, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNoKey
	}

	t := &Translator{
		baseURL:    DefaultBaseURL,
		key:        key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type providerResponse struct {
	Code int      `json:"code"`
	Lang string   `json:"lang"`
	Text []string `json:"text"`
}

// Translate converts text from sourceLang to destLang. On any failure it
// returns ErrServiceFailed. There are no retries.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, destLang string) string {
	log := slogx.FromContext(ctx).With(
		slog.String("source_lang", sourceLang),
		slog.String("dest_lang", destLang),
	)

	q := url.Values{}
	q.Set("key", t.key)
	q.Set("text", text)
	q.Set("lang", sourceLang+"-"+destLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+translatePath+"?"+q.Encode(), nil)
	if err != nil {
		log.Warn("translate: build request", slog.Any("error", err))
		return ErrServiceFailed
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Warn("translate: provider unreachable", slog.Any("error", err))
		return ErrServiceFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("translate: provider error", slog.Int("status", resp.StatusCode))
		return ErrServiceFailed
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("translate: read body", slog.Any("error", err))
		return ErrServiceFailed
	}

	var body providerResponse
	if err := json.Unmarshal(bytes.TrimPrefix(raw, utf8BOM), &body); err != nil {
		log.Warn("translate: decode body", slog.Any("error", err))
		return ErrServiceFailed
	}
	if len(body.Text) == 0 {
		log.Warn("translate: empty result")
		return ErrServiceFailed
	}

	return body.Text[0]
}
