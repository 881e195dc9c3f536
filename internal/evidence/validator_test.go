package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warroom/scoring-service/internal/model"
)

func testValidator() *Validator {
	return NewValidator([]string{"ezzsteel.com", "linkedin.com", "reuters.com", "sec.gov"})
}

func TestValidatorTrusted(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"trusted exact", "https://ezzsteel.com/investors", true},
		{"trusted www", "https://www.ezzsteel.com/investors", true},
		{"trusted subdomain", "https://edgar.sec.gov/filings", true},
		{"untrusted", "https://example.org/page", false},
		{"lookalike suffix", "https://notezzsteel.com/", false},
		{"unparseable", "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Trusted(tt.url))
		})
	}
}

func TestValidatorQuality(t *testing.T) {
	v := testValidator()

	long := []model.EvidenceSnippet{
		{TextSnippet: strings.Repeat("a", 100)},
		{TextSnippet: strings.Repeat("b", 100)},
		{TextSnippet: "c"}, {TextSnippet: "d"}, {TextSnippet: "e"},
	}

	// Trusted domain, saturated length and count.
	assert.InDelta(t, 1.0, v.Quality("https://www.reuters.com/a", long), 0.01)

	// Untrusted loses the domain component.
	assert.InDelta(t, 0.6, v.Quality("https://example.org/a", long), 0.01)

	// No snippets at all.
	assert.InDelta(t, 0.4, v.Quality("https://www.reuters.com/a", nil), 0.001)
	assert.InDelta(t, 0.0, v.Quality("https://example.org/a", nil), 0.001)
}
