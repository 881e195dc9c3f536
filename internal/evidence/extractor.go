// Package evidence harvests supporting text snippets from cited web sources.
// Harvesting is best-effort: every failure degrades to an empty result set,
// and grading never blocks on it.
package evidence

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/warroom/scoring-service/internal/config"
	"github.com/warroom/scoring-service/internal/model"
	"github.com/warroom/scoring-service/internal/resilience"
)

// snippetContext is the number of characters of surrounding text kept on
// each side of a matched term.
const snippetContext = 100

// Extractor fetches cited pages and extracts term-matching snippets.
type Extractor struct {
	client        *http.Client
	limiter       *rate.Limiter
	retry         resilience.RetryConfig
	maxPerTerm    int
	maxConcurrent int
}

// NewExtractor creates an Extractor from configuration.
func NewExtractor(cfg config.EvidenceConfig) *Extractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	maxPerTerm := cfg.MaxSnippetsPerTerm
	if maxPerTerm <= 0 {
		maxPerTerm = 5
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.Retries > 0 {
		retry.MaxAttempts = cfg.Retries + 1
	}

	return &Extractor{
		client:        &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(rate.Limit(rps), 1),
		retry:         retry,
		maxPerTerm:    maxPerTerm,
		maxConcurrent: maxConcurrent,
	}
}

// Extract fetches one URL and returns snippets containing the search terms.
// Failures return an empty slice, never an error.
func (e *Extractor) Extract(ctx context.Context, sourceURL string, terms []string) []model.EvidenceSnippet {
	text, err := e.fetchText(ctx, sourceURL)
	if err != nil {
		zap.L().Warn("evidence: fetch failed",
			zap.String("url", sourceURL),
			zap.Error(err),
		)
		return nil
	}

	var snippets []model.EvidenceSnippet
	for _, term := range terms {
		snippets = append(snippets, findTermSnippets(text, term, sourceURL, e.maxPerTerm)...)
	}
	return snippets
}

// ExtractAll harvests several source URLs concurrently, bounded by the
// configured concurrency limit.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string, terms []string) []model.EvidenceSnippet {
	var (
		mu       sync.Mutex
		snippets []model.EvidenceSnippet
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for _, u := range urls {
		u := u
		g.Go(func() error {
			found := e.Extract(gCtx, u, terms)
			if len(found) > 0 {
				mu.Lock()
				snippets = append(snippets, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return snippets
}

// fetchText downloads a page and returns its visible text. Non-HTML content
// types are rejected; script and style subtrees are dropped.
func (e *Extractor) fetchText(ctx context.Context, sourceURL string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "evidence: rate limit wait")
	}

	body, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "evidence: build request")
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "evidence: get")
		}
		defer resp.Body.Close()

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("evidence: status %d from %s", resp.StatusCode, sourceURL),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("evidence: status %d from %s", resp.StatusCode, sourceURL)
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text/plain") {
			return nil, eris.Errorf("evidence: unsupported content type %s", contentType)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return "", err
	}

	return visibleText(string(body)), nil
}

// visibleText strips markup from an HTML document, ignoring script and
// style subtrees. Plain text passes through unchanged apart from tag
// removal.
func visibleText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

// findTermSnippets locates case-insensitive occurrences of term and cuts a
// context window around each.
func findTermSnippets(text, term, sourceURL string, limit int) []model.EvidenceSnippet {
	if text == "" || term == "" {
		return nil
	}

	loweredText := strings.ToLower(text)
	loweredTerm := strings.ToLower(term)

	var snippets []model.EvidenceSnippet
	start := 0
	for len(snippets) < limit {
		pos := strings.Index(loweredText[start:], loweredTerm)
		if pos < 0 {
			break
		}
		pos += start

		ctxStart := pos - snippetContext
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := pos + len(term) + snippetContext
		if ctxEnd > len(text) {
			ctxEnd = len(text)
		}

		snippets = append(snippets, model.EvidenceSnippet{
			SnapshotPath: snapshotPath(sourceURL),
			XPath:        fmt.Sprintf("//text()[contains(., '%s')]", term),
			StartOffset:  pos - ctxStart,
			EndOffset:    pos - ctxStart + len(term),
			TextSnippet:  text[ctxStart:ctxEnd],
		})

		start = pos + 1
	}
	return snippets
}

func snapshotPath(sourceURL string) string {
	host := ""
	if parsed, err := url.Parse(sourceURL); err == nil {
		host = parsed.Host
	}
	h := fnv.New64a()
	h.Write([]byte(sourceURL))
	return fmt.Sprintf("s3://evidence-snapshots/%s/%x.html", host, h.Sum64())
}
