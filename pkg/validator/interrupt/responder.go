package interrupt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/bytedance/sonic"
)

// CannedResponse is used whenever no quote is available.
const CannedResponse = "I understand you'd like to speak with someone. Would you like to continue with the survey or stop here?"

// DefaultQuotesURL serves a random quote as [{"q": "...", "a": "..."}].
const DefaultQuotesURL = "https://zenquotes.io/api/random"

// Static always answers with the same text.
type Static string

// Respond implements Responder.
func (s Static) Respond(context.Context) string {
	return string(s)
}

// QuoteResponder answers with a quote fetched from a quote service,
// falling back to CannedResponse on any failure.
type QuoteResponder struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// QuoteOption configures a QuoteResponder.
type QuoteOption func(*QuoteResponder)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) QuoteOption {
	return func(r *QuoteResponder) {
		r.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) QuoteOption {
	return func(r *QuoteResponder) {
		r.logger = logger
	}
}

// NewQuoteResponder creates a responder for the given quote service URL.
func NewQuoteResponder(url string, opts ...QuoteOption) *QuoteResponder {
	if url == "" {
		url = DefaultQuotesURL
	}
	r := &QuoteResponder{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type quote struct {
	Quote  string `json:"q"`
	Author string `json:"a"`
}

// Respond implements Responder.
func (r *QuoteResponder) Respond(ctx context.Context) string {
	q, err := r.fetch(ctx)
	if err != nil {
		r.logger.Warn("quote unavailable", "url", r.url, "err", err)
		return CannedResponse
	}
	return fmt.Sprintf("Here's something to brighten your day:\n\n\"%s\"\n- %s\n\nWould you like to continue with the survey or would you prefer to stop here?", q.Quote, q.Author)
}

func (r *QuoteResponder) fetch(ctx context.Context) (quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return quote{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return quote{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return quote{}, err
	}

	var quotes []quote
	if err := sonic.Unmarshal(body, &quotes); err != nil {
		return quote{}, fmt.Errorf("decode quotes: %w", err)
	}
	if len(quotes) == 0 || quotes[0].Quote == "" {
		return quote{}, fmt.Errorf("empty quote list")
	}
	return quotes[0], nil
}
