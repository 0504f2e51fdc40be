package validate

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/fetcher"
	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// DefaultMinScore is the score a website must exceed to pass.
const DefaultMinScore = 60

// ReachabilityChecker decides whether a company website is live and looks
// like a real business site. Implementations never fail: an unreachable site
// is a verdict, not an error.
type ReachabilityChecker interface {
	Check(ctx context.Context, websiteURL string) *model.WebsiteCheck
}

// RunScoper is implemented by checkers that keep per-run state. The pipeline
// calls ForRun once at the start of every run.
type RunScoper interface {
	ForRun() ReachabilityChecker
}

// VerdictCache persists verdicts across runs. Get returns (nil, nil) on a miss.
type VerdictCache interface {
	Get(ctx context.Context, domain string) (*model.WebsiteCheck, error)
	Set(ctx context.Context, domain string, check *model.WebsiteCheck) error
}

// WebsiteChecker scores a page fetched through a fetcher.Fetcher.
type WebsiteChecker struct {
	fetcher  fetcher.Fetcher
	minScore int
	cache    VerdictCache

	mu   sync.Mutex
	memo map[string]*model.WebsiteCheck
}

// WebsiteOption customizes a WebsiteChecker.
type WebsiteOption func(*WebsiteChecker)

// WithMinScore overrides DefaultMinScore.
func WithMinScore(n int) WebsiteOption {
	return func(w *WebsiteChecker) { w.minScore = n }
}

// WithCache enables a cross-run verdict cache.
func WithCache(c VerdictCache) WebsiteOption {
	return func(w *WebsiteChecker) { w.cache = c }
}

// NewWebsiteChecker creates a WebsiteChecker.
func NewWebsiteChecker(f fetcher.Fetcher, opts ...WebsiteOption) *WebsiteChecker {
	w := &WebsiteChecker{
		fetcher:  f,
		minScore: DefaultMinScore,
		memo:     make(map[string]*model.WebsiteCheck),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Check fetches and scores websiteURL. Verdicts are memoized per domain for
// the lifetime of the checker and, when configured, in the verdict cache.
func (w *WebsiteChecker) Check(ctx context.Context, websiteURL string) *model.WebsiteCheck {
	domain := normalize.NormalizeDomain(websiteURL)
	log := zap.L().With(zap.String("url", websiteURL), zap.String("domain", domain))

	if domain != "" {
		if c := w.lookup(ctx, domain, log); c != nil {
			return w.judge(*c)
		}
	}

	check := model.WebsiteCheck{URL: websiteURL, Domain: domain, CheckedAt: time.Now().UTC()}
	resp, err := w.fetcher.Get(ctx, websiteURL)
	switch {
	case err != nil:
		log.Debug("validate: website fetch failed", zap.Error(err))
		return w.judge(check)
	case !resp.OK():
		check.Status = resp.Status
		log.Debug("validate: website returned non-2xx", zap.Int("status", resp.Status))
	default:
		check.Status = resp.Status
		check.Score, check.Signals = ScorePage(string(resp.Body))
	}

	if domain != "" {
		w.store(ctx, domain, &check, log)
	}
	return w.judge(check)
}

// ForRun returns a checker that shares the fetcher, threshold and verdict
// cache but starts with an empty memo, so verdicts never outlive one run.
func (w *WebsiteChecker) ForRun() ReachabilityChecker {
	return &WebsiteChecker{
		fetcher:  w.fetcher,
		minScore: w.minScore,
		cache:    w.cache,
		memo:     make(map[string]*model.WebsiteCheck),
	}
}

func (w *WebsiteChecker) judge(c model.WebsiteCheck) *model.WebsiteCheck {
	c.Threshold = w.minScore
	c.Reachable = c.Status >= 200 && c.Status < 300 && c.Score > w.minScore
	return &c
}

func (w *WebsiteChecker) lookup(ctx context.Context, domain string, log *zap.Logger) *model.WebsiteCheck {
	w.mu.Lock()
	c, ok := w.memo[domain]
	w.mu.Unlock()
	if ok {
		return c
	}
	if w.cache == nil {
		return nil
	}
	c, err := w.cache.Get(ctx, domain)
	if err != nil {
		log.Warn("validate: verdict cache read failed", zap.Error(err))
		return nil
	}
	if c != nil {
		w.mu.Lock()
		w.memo[domain] = c
		w.mu.Unlock()
	}
	return c
}

func (w *WebsiteChecker) store(ctx context.Context, domain string, c *model.WebsiteCheck, log *zap.Logger) {
	w.mu.Lock()
	w.memo[domain] = c
	w.mu.Unlock()
	// Only verdicts from a page that actually loaded are shared across runs.
	if w.cache == nil || c.Status < 200 || c.Status >= 300 {
		return
	}
	if err := w.cache.Set(ctx, domain, c); err != nil {
		log.Warn("validate: verdict cache write failed", zap.Error(err))
	}
}

var emailShapeRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

type signal struct {
	name   string
	points int
	match  func(lower string) bool
}

func contains(sub string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, sub) }
}

var pageSignals = []signal{
	{"contact", 15, contains("contact")},
	{"about", 15, contains("about")},
	{"email", 20, emailShapeRe.MatchString},
	{"linkedin", 10, contains("linkedin")},
	{"privacy", 10, contains("privacy")},
	{"nav", 10, contains("</nav>")},
	{"not_found", -50, func(s string) bool { return strings.Contains(s, "404") || strings.Contains(s, "not found") }},
	{"placeholder", -30, func(s string) bool {
		return strings.Contains(s, "under construction") || strings.Contains(s, "coming soon")
	}},
}

// ScorePage applies the content heuristic to an HTML body and returns the
// score with the names of the signals that fired. It filters parked and
// placeholder pages on a best-effort basis.
func ScorePage(body string) (int, []string) {
	lower := strings.ToLower(body)
	score := 0
	var fired []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil && doc.Find("title").Length() > 0 {
		score += 20
		fired = append(fired, "title")
	}

	for _, s := range pageSignals {
		if s.match(lower) {
			score += s.points
			fired = append(fired, s.name)
		}
	}

	words := visibleWords(doc, body)
	if words > 500 {
		score += 20
		fired = append(fired, "words_500")
	}
	if words > 1000 {
		score += 10
		fired = append(fired, "words_1000")
	}
	return score, fired
}

func visibleWords(doc *goquery.Document, body string) int {
	if doc == nil {
		return len(strings.Fields(body))
	}
	doc.Find("script, style, noscript, template").Remove()
	return len(strings.Fields(doc.Text()))
}
