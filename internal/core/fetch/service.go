package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lplens/internal/logger"
)

var (
	// ErrInvalidURL is returned before any network activity when the
	// target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrFetchExhausted is returned after every strategy, including the
	// final bare attempt, has failed.
	ErrFetchExhausted = errors.New("all fetch strategies exhausted")
)

// Document is the outcome of a successful acquisition.
type Document struct {
	URL        string    `json:"url"`
	Body       string    `json:"body"`
	Strategy   string    `json:"strategy"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
	Attempts   []Attempt `json:"attempts,omitempty"`
}

// Attempt records one try in the strategy chain, successful or not.
type Attempt struct {
	Strategy   string        `json:"strategy"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Acquirer is anything that can turn a URL into a Document.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (*Document, error)
}

// Service walks the header-profile chain with plain HTTP GETs. A network
// error, a non-2xx status, or an empty body all mean "try the next
// identity"; only the exhausted chain is an error.
type Service struct {
	log     *logger.Logger
	client  *http.Client
	timeout time.Duration
}

func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		log:     logger.New("FetchService"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

func (s *Service) Acquire(ctx context.Context, rawURL string) (*Document, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	var attempts []Attempt
	var lastErr error

	strategies := AllStrategies()
	for i, strategy := range strategies {
		s.log.Info().Str("url", rawURL).Int("attempt", i+1).Str("strategy", string(strategy)).Msg("fetch attempt")
		profile, _ := ProfileFor(strategy)

		doc, att, err := s.fetchOnce(ctx, rawURL, strategy, &profile)
		attempts = append(attempts, att)
		if err == nil {
			doc.Attempts = attempts
			s.log.LogSuccessf("fetch ok url=%s strategy=%s status=%d", rawURL, strategy, doc.StatusCode)
			return doc, nil
		}
		lastErr = err
		s.log.Info().Str("url", rawURL).Str("strategy", string(strategy)).Str("error", err.Error()).Msg("fetch attempt failed")
	}

	// Last resort: a bare request with no identity headers at all. Some
	// origins serve default clients they would block as "browsers".
	doc, att, err := s.fetchOnce(ctx, rawURL, StrategyBare, nil)
	attempts = append(attempts, att)
	if err == nil {
		doc.Attempts = attempts
		s.log.LogSuccessf("fetch ok url=%s strategy=%s status=%d", rawURL, StrategyBare, doc.StatusCode)
		return doc, nil
	}
	lastErr = err

	return nil, fmt.Errorf("%w: %v", ErrFetchExhausted, lastErr)
}

func (s *Service) fetchOnce(ctx context.Context, rawURL string, strategy Strategy, profile *HeaderProfile) (*Document, Attempt, error) {
	start := time.Now()
	att := Attempt{Strategy: string(strategy)}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		att.Error = err.Error()
		att.Duration = time.Since(start)
		return nil, att, fmt.Errorf("build request: %w", err)
	}
	if profile != nil {
		applyProfile(req, *profile)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		att.Error = err.Error()
		att.Duration = time.Since(start)
		return nil, att, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	att.StatusCode = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	att.Duration = time.Since(start)
	if err != nil {
		att.Error = err.Error()
		return nil, att, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("status %d", resp.StatusCode)
		att.Error = err.Error()
		return nil, att, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		err := errors.New("empty body")
		att.Error = err.Error()
		return nil, att, err
	}

	return &Document{
		URL:        rawURL,
		Body:       string(body),
		Strategy:   string(strategy),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now().UTC(),
	}, att, nil
}

func applyProfile(req *http.Request, p HeaderProfile) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	// Accept-Encoding is left to the transport; setting it manually
	// disables net/http's transparent gzip decompression.
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if p.SecFetchDest != "" {
		req.Header.Set("Sec-Fetch-Dest", p.SecFetchDest)
		req.Header.Set("Sec-Fetch-Mode", p.SecFetchMode)
		req.Header.Set("Sec-Fetch-Site", p.SecFetchSite)
		if p.SecFetchUser != "" {
			req.Header.Set("Sec-Fetch-User", p.SecFetchUser)
		}
	}
	if p.SecChUa != "" {
		req.Header.Set("Sec-Ch-Ua", p.SecChUa)
		req.Header.Set("Sec-Ch-Ua-Mobile", p.SecChUaMobile)
		req.Header.Set("Sec-Ch-Ua-Platform", p.SecChUaPlatform)
	}
}
