package fetch

import (
	"context"
	"fmt"
	"time"

	"lplens/internal/logger"

	"github.com/gocolly/colly"
)

const StrategyCollyVariant = "colly_variant"

// CollyBackend acquires a page through gocolly. It manages redirects and
// cookies on its own, which sometimes gets through where the plain chain
// does not, so the orchestrator schedules it on later attempts.
type CollyBackend struct {
	log     *logger.Logger
	timeout time.Duration
}

func NewCollyBackend(timeout time.Duration) *CollyBackend {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CollyBackend{log: logger.New("CollyBackend"), timeout: timeout}
}

func (b *CollyBackend) Acquire(ctx context.Context, rawURL string) (*Document, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	profile, _ := ProfileFor(StrategyDesktopBrowser)
	c := colly.NewCollector(colly.UserAgent(profile.UserAgent))
	c.SetRequestTimeout(b.timeout)

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
		r.Headers.Set("Accept", profile.Accept)
		r.Headers.Set("Accept-Language", profile.AcceptLanguage)
	})

	start := time.Now()
	var body string
	var status int
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		status = r.StatusCode
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("colly visit: %w", err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, fmt.Errorf("colly fetch: %w", visitErr)
	}
	if body == "" {
		return nil, fmt.Errorf("colly fetch: empty body")
	}

	b.log.LogDebugf("colly fetch ok url=%s status=%d in %v", rawURL, status, time.Since(start))
	return &Document{
		URL:        rawURL,
		Body:       body,
		Strategy:   StrategyCollyVariant,
		StatusCode: status,
		FetchedAt:  time.Now().UTC(),
		Attempts:   []Attempt{{Strategy: StrategyCollyVariant, StatusCode: status, Duration: time.Since(start)}},
	}, nil
}
