package evidence

import (
	"net/url"
	"strings"

	"github.com/warroom/scoring-service/internal/model"
)

// Validator judges the quality of harvested evidence based on the source
// domain and the volume of matched text.
type Validator struct {
	trustedDomains []string
}

// NewValidator creates a Validator using the given trusted-domain suffixes.
func NewValidator(trustedDomains []string) *Validator {
	return &Validator{trustedDomains: trustedDomains}
}

// Trusted reports whether the source URL belongs to a trusted domain.
func (v *Validator) Trusted(sourceURL string) bool {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	for _, d := range v.trustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Quality scores a set of snippets from a source on [0, 1]. The score blends
// domain trust, total snippet length, and snippet count.
func (v *Validator) Quality(sourceURL string, snippets []model.EvidenceSnippet) float64 {
	domainScore := 0.0
	if v.Trusted(sourceURL) {
		domainScore = 1.0
	}

	totalLen := 0
	for _, s := range snippets {
		totalLen += len(s.TextSnippet)
	}
	lengthScore := float64(totalLen) / 200.0
	if lengthScore > 1.0 {
		lengthScore = 1.0
	}

	countScore := float64(len(snippets)) / 5.0
	if countScore > 1.0 {
		countScore = 1.0
	}

	return 0.4*domainScore + 0.3*lengthScore + 0.3*countScore
}
