package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lplens/internal/core/extract"
	"lplens/internal/core/fetch"
	"lplens/internal/core/price"
	"lplens/internal/logger"
)

// ErrAllAttemptsFailed is returned when no attempt produced a record.
var ErrAllAttemptsFailed = errors.New("all analysis attempts failed")

const defaultScoreThreshold = 80

var defaultDelays = []time.Duration{0, 2 * time.Second, 5 * time.Second}

// Assessor turns an acquired document into a scored record. Split out as
// an interface so the attempt loop can be exercised without real HTML.
type Assessor interface {
	Assess(doc *fetch.Document, pageURL string) *extract.Result
}

type pricerAssessor struct{ pricer *price.Extractor }

func (a pricerAssessor) Assess(doc *fetch.Document, pageURL string) *extract.Result {
	r := extract.Assemble(doc.Body, pageURL, a.pricer)
	r.FetchStrategy = doc.Strategy
	return r
}

// NewAssessor builds the production assessor around a price extractor.
func NewAssessor(pricer *price.Extractor) Assessor {
	return pricerAssessor{pricer: pricer}
}

// Cache is the slice of the Redis service the orchestrator uses for
// analysis results. Satisfied by *redis.Service.
type Cache interface {
	CacheGet(ctx context.Context, key string, dest interface{}) error
	CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error
	CacheDel(ctx context.Context, key string) error
}

// Config wires the orchestrator. Primary is required; Variant is used
// for the second attempt onward when present; Render, when present, is
// raced once against the whole attempt sequence.
type Config struct {
	Redis     Cache
	Primary   fetch.Acquirer
	Variant   fetch.Acquirer
	Render    fetch.Acquirer
	Assessor  Assessor
	Threshold int
	Delays    []time.Duration
	CacheTTL  int
}

// Service runs the multi-attempt extraction loop: acquire, assess,
// keep the best, stop early once a record is complete enough.
type Service struct {
	log       *logger.Logger
	redis     Cache
	primary   fetch.Acquirer
	variant   fetch.Acquirer
	render    fetch.Acquirer
	assessor  Assessor
	threshold int
	delays    []time.Duration
	cacheTTL  int
}

func NewService(cfg Config) *Service {
	if cfg.Threshold == 0 {
		cfg.Threshold = defaultScoreThreshold
	}
	if len(cfg.Delays) == 0 {
		cfg.Delays = defaultDelays
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 900
	}
	return &Service{
		log:       logger.New("AnalyzeService"),
		redis:     cfg.Redis,
		primary:   cfg.Primary,
		variant:   cfg.Variant,
		render:    cfg.Render,
		assessor:  cfg.Assessor,
		threshold: cfg.Threshold,
		delays:    cfg.Delays,
		cacheTTL:  cfg.CacheTTL,
	}
}

type attempt struct {
	res  *extract.Result
	body string
}

// Analyze extracts a record for the URL, retrying with delays until an
// attempt crosses the completeness threshold. Ties keep the earliest
// attempt; later attempts only win with a strictly better score.
func (s *Service) Analyze(ctx context.Context, rawURL string, fresh bool) (*extract.Result, error) {
	res, _, err := s.AnalyzeWithBody(ctx, rawURL, fresh)
	return res, err
}

// AnalyzeWithBody also returns the winning attempt's raw HTML, which the
// enrichment stage feeds into the prompt. The body is empty on cache hits.
func (s *Service) AnalyzeWithBody(ctx context.Context, rawURL string, fresh bool) (*extract.Result, string, error) {
	if _, err := fetch.ValidateURL(rawURL); err != nil {
		return nil, "", err
	}

	if fresh {
		s.invalidate(ctx, rawURL)
	} else if cached := s.getCached(ctx, rawURL); cached != nil {
		s.log.Info().Str("url", rawURL).Msg("cache hit")
		return cached, "", nil
	}

	renderCh := s.raceRender(ctx, rawURL)

	var best attempt
	bestScore := -1
	var results []*extract.Result
	var lastErr error

	for i, delay := range s.delays {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(delay):
			}
		}

		acquirer := s.primary
		if i > 0 && s.variant != nil {
			acquirer = s.variant
		}

		doc, err := acquirer.Acquire(ctx, rawURL)
		if err != nil {
			lastErr = err
			s.log.LogWarnf("attempt %d failed url=%s: %v", i+1, rawURL, err)
			continue
		}

		res := s.assessor.Assess(doc, rawURL)
		results = append(results, res)
		score := res.Score()
		s.log.Info().Str("url", rawURL).Int("attempt", i+1).Int("score", score).Str("strategy", res.FetchStrategy).Msg("attempt assessed")

		if score > bestScore {
			best = attempt{res: res, body: doc.Body}
			bestScore = score
		}
		if score >= s.threshold {
			break
		}
	}

	// A rendered result that arrived in time competes on equal terms.
	if renderCh != nil {
		select {
		case a, ok := <-renderCh:
			if ok && a.res != nil {
				results = append(results, a.res)
				if a.res.Score() > bestScore {
					best = a
					bestScore = a.res.Score()
				}
			}
		default:
		}
	}

	if best.res == nil {
		if lastErr != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrAllAttemptsFailed, lastErr)
		}
		return nil, "", ErrAllAttemptsFailed
	}

	mergeResults(best.res, results)
	s.cache(ctx, rawURL, best.res)
	s.log.LogSuccessf("analysis ok url=%s score=%d attempts=%d", rawURL, bestScore, len(results))
	return best.res, best.body, nil
}

// raceRender kicks off the optional render backend concurrently with the
// direct attempts. Its result is only consulted, never waited for.
func (s *Service) raceRender(ctx context.Context, rawURL string) <-chan attempt {
	if s.render == nil {
		return nil
	}
	ch := make(chan attempt, 1)
	go func() {
		defer close(ch)
		doc, err := s.render.Acquire(ctx, rawURL)
		if err != nil {
			s.log.LogDebugf("render fallback failed url=%s: %v", rawURL, err)
			return
		}
		ch <- attempt{res: s.assessor.Assess(doc, rawURL), body: doc.Body}
	}()
	return ch
}

// mergeResults folds the other attempts into the winner: list fields
// become a capped union, empty singular fields take the first value
// found elsewhere. Prices stay exactly as the winning attempt saw them.
func mergeResults(best *extract.Result, all []*extract.Result) {
	for _, r := range all {
		if r == best {
			continue
		}
		best.Features = unionCapped(best.Features, r.Features, 10)
		best.Images = unionCapped(best.Images, r.Images, 10)
		best.Authority = unionCapped(best.Authority, r.Authority, 10)
		if best.Title == "" {
			best.Title = r.Title
		}
		if best.ProductName == "" {
			best.ProductName = r.ProductName
		}
		if best.Description == "" {
			best.Description = r.Description
		}
		if best.Category == "" {
			best.Category = r.Category
		}
		if best.Company == "" {
			best.Company = r.Company
		}
		if best.Guarantee == "" {
			best.Guarantee = r.Guarantee
		}
		if best.Campaign == "" {
			best.Campaign = r.Campaign
		}
	}
}

func unionCapped(a, b []string, cap int) []string {
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range b {
		if len(out) >= cap {
			break
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) getCached(ctx context.Context, rawURL string) *extract.Result {
	if s.redis == nil {
		return nil
	}
	var res extract.Result
	if err := s.redis.CacheGet(ctx, cacheKey(rawURL), &res); err != nil {
		return nil
	}
	return &res
}

func (s *Service) cache(ctx context.Context, rawURL string, res *extract.Result) {
	if s.redis == nil {
		return
	}
	_ = s.redis.CacheSet(ctx, cacheKey(rawURL), res, s.cacheTTL)
}

// invalidate drops the cached record so a fresh run that fails part-way
// cannot leave a stale entry behind it.
func (s *Service) invalidate(ctx context.Context, rawURL string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.CacheDel(ctx, cacheKey(rawURL))
}

func cacheKey(rawURL string) string {
	safe := strings.NewReplacer(":", "_", "/", "_", "?", "_", "&", "_").Replace(rawURL)
	return "analysis:" + safe
}
