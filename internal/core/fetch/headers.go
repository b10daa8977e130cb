package fetch

// HeaderProfile is a complete request identity for one fetch attempt.
type HeaderProfile struct {
	UserAgent       string
	Accept          string
	AcceptLanguage  string
	AcceptEncoding  string
	SecFetchDest    string
	SecFetchMode    string
	SecFetchSite    string
	SecFetchUser    string
	SecChUa         string
	SecChUaMobile   string
	SecChUaPlatform string
}

// Strategy identifies which request identity a fetch attempt used.
type Strategy string

const (
	StrategyDesktopBrowser Strategy = "desktop_browser"
	StrategyMobileDevice   Strategy = "mobile_device"
	StrategyMinimalClient  Strategy = "minimal_client"
	StrategySearchCrawler  Strategy = "search_crawler"
	StrategyBare           Strategy = "bare"
)

var profiles = map[Strategy]HeaderProfile{
	StrategyDesktopBrowser: {
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		AcceptLanguage:  "ja,en-US;q=0.9,en;q=0.8",
		AcceptEncoding:  "gzip, deflate, br, zstd",
		SecFetchDest:    "document",
		SecFetchMode:    "navigate",
		SecFetchSite:    "none",
		SecFetchUser:    "?1",
		SecChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUaMobile:   "?0",
		SecChUaPlatform: `"macOS"`,
	},
	StrategyMobileDevice: {
		UserAgent:       "Mozilla/5.0 (iPhone; CPU iPhone OS 18_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Mobile/15E148 Safari/604.1",
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage:  "ja,en-US;q=0.9,en;q=0.8",
		AcceptEncoding:  "gzip, deflate, br",
		SecFetchDest:    "document",
		SecFetchMode:    "navigate",
		SecFetchSite:    "none",
		SecChUaMobile:   "?1",
		SecChUaPlatform: `"iOS"`,
	},
	StrategyMinimalClient: {
		UserAgent:      "Mozilla/5.0 (compatible)",
		Accept:         "text/html,*/*;q=0.8",
		AcceptLanguage: "ja,en;q=0.8",
		AcceptEncoding: "gzip, deflate",
	},
	StrategySearchCrawler: {
		UserAgent:      "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "ja,en;q=0.8",
		AcceptEncoding: "gzip, deflate, br",
	},
}

// ProfileFor returns the header profile for a strategy. The bare strategy
// carries no profile at all.
func ProfileFor(s Strategy) (HeaderProfile, bool) {
	p, ok := profiles[s]
	return p, ok
}

// AllStrategies returns the profile-backed strategies in priority order.
// Landing pages that block one identity often serve another, so the order
// goes from the most common real-visitor identity down to a crawler one.
func AllStrategies() []Strategy {
	return []Strategy{
		StrategyDesktopBrowser,
		StrategyMobileDevice,
		StrategyMinimalClient,
		StrategySearchCrawler,
	}
}
