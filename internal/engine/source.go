package engine

import (
	"net/url"
	"strings"

	"github.com/warroom/scoring-service/internal/model"
)

// maxSourceScore is the source component's share of the 85-point scale.
const maxSourceScore = 15.0

// sourceScore converts a cited source into a credibility and a bounded
// source score. A declared reference match used as primary bypasses domain
// inspection with full credit.
func (e *Engine) sourceScore(sourceLink string, ref *model.CompanyReference) (raw, credibility float64, verified bool) {
	if ref != nil && ref.UseReferenceAsPrimary {
		return maxSourceScore, 1.0, true
	}
	if sourceLink == "" {
		return 0, 0, false
	}

	credibility = e.credibility(sourceLink)
	return credibility * maxSourceScore, credibility, true
}

// credibility classifies the citation's domain by ordered pattern
// precedence and maps the class to its configured score.
func (e *Engine) credibility(sourceLink string) float64 {
	domain := extractDomain(sourceLink)
	if domain == "" {
		return e.classScore("unknown")
	}

	switch {
	case containsAny(domain, "sec.gov", "edgar", "filings"):
		return e.classScore("filings")
	case containsAny(domain, e.cfg.CompanyDomains...):
		return e.classScore("company_domain")
	case containsAny(domain, "reuters.com", "bloomberg.com", "wsj.com", "ft.com"):
		return e.classScore("reuters_bloomberg")
	case strings.Contains(domain, "crunchbase"):
		return e.classScore("crunchbase")
	case strings.Contains(domain, "linkedin"):
		return e.classScore("linkedin")
	case containsAny(domain, "blog", "medium", "substack"):
		return e.classScore("blogs")
	case containsAny(domain, "facebook", "twitter", "instagram", "youtube"):
		return e.classScore("social_media")
	default:
		return e.classScore("unknown")
	}
}

func (e *Engine) classScore(class string) float64 {
	return e.cfg.SourceCredibility[class]
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
