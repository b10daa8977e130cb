package fetch

import (
	"context"
	"fmt"
	"time"

	"lplens/internal/logger"

	"github.com/playwright-community/playwright-go"
)

const StrategyRendered = "rendered"

// RenderBackend acquires a page through a headless browser so that prices
// injected by JavaScript end up in the body. It is config-gated: the core
// chain never depends on it, the orchestrator only races it as a fallback.
type RenderBackend struct {
	log *logger.Logger
}

func NewRenderBackend() *RenderBackend {
	return &RenderBackend{log: logger.New("RenderBackend")}
}

func (b *RenderBackend) Acquire(ctx context.Context, rawURL string) (*Document, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	start := time.Now()
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright run: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--no-first-run",
			"--disable-default-apps",
			"--disable-extensions",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("launch: %w", err)
	}
	defer browser.Close()

	profile, _ := ProfileFor(StrategyDesktopBrowser)
	headers := map[string]string{
		"Accept":          profile.Accept,
		"Accept-Language": profile.AcceptLanguage,
	}
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:        playwright.String(profile.UserAgent),
		ExtraHttpHeaders: headers,
	})
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, err
	}

	resp, navErr := page.Goto(rawURL, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded, Timeout: playwright.Float(10000)})
	if navErr != nil {
		resp, navErr = page.Goto(rawURL, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad, Timeout: playwright.Float(20000)})
		if navErr != nil {
			return nil, fmt.Errorf("goto failed: %w", navErr)
		}
	}

	// Give late price banners a chance to render; network idle is best
	// effort and many ad-heavy LPs never reach it.
	_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	})

	content, err := page.Content()
	if err != nil {
		return nil, err
	}

	status := 200
	if resp != nil {
		status = resp.Status()
	}

	b.log.LogDebugf("render ok url=%s status=%d in %v", rawURL, status, time.Since(start))
	return &Document{
		URL:        rawURL,
		Body:       content,
		Strategy:   StrategyRendered,
		StatusCode: status,
		FetchedAt:  time.Now().UTC(),
		Attempts:   []Attempt{{Strategy: StrategyRendered, StatusCode: status, Duration: time.Since(start)}},
	}, nil
}
