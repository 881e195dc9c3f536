package similarity

import (
	"math"

	"github.com/rotisserie/eris"
)

// FieldType declares how a field's submitted value is compared against the
// reference value.
type FieldType string

const (
	TypeName       FieldType = "name"
	TypeDate       FieldType = "date"
	TypeNumber     FieldType = "number"
	TypePercentage FieldType = "percentage"
	TypeCategory   FieldType = "category"
	// TypeURL is a declared alias: citation fields carry URLs but are
	// compared with the name algorithm.
	TypeURL FieldType = "url"
)

// Thresholds holds the tolerance constants the matchers dispatch on.
type Thresholds struct {
	NameFull          float64
	NamePartial       float64
	CategoryFull      float64
	DateYears         int
	NumericFullPct    float64
	NumericPartialPct float64
	PercentFullPts    float64
	PercentPartialPts float64
}

// Matcher scores a submitted value against a reference value in [0,1].
// Implementations are pure and safe for concurrent use.
type Matcher interface {
	Score(submitted, reference string) float64
}

// MatcherFor resolves the matcher variant for a declared field type at
// template-load time. Unknown types are an error, not a silent default.
func MatcherFor(ft FieldType, th Thresholds) (Matcher, error) {
	switch ft {
	case TypeName, TypeURL:
		return nameMatcher{th}, nil
	case TypeCategory:
		return categoryMatcher{th}, nil
	case TypeDate:
		return dateMatcher{th}, nil
	case TypeNumber:
		return numberMatcher{th}, nil
	case TypePercentage:
		return percentageMatcher{th}, nil
	default:
		return nil, eris.Errorf("similarity: unknown field type %q", ft)
	}
}

type nameMatcher struct{ th Thresholds }

func (m nameMatcher) Score(submitted, reference string) float64 {
	if submitted == "" || reference == "" {
		return 0
	}
	ns := Normalize(submitted)
	nr := Normalize(reference)
	if ns == nr {
		return 1
	}
	ratio := TokenSortRatio(ns, nr)
	switch {
	case ratio >= m.th.NameFull:
		return 1
	case ratio >= m.th.NamePartial:
		return ratio
	default:
		return 0
	}
}

type categoryMatcher struct{ th Thresholds }

func (m categoryMatcher) Score(submitted, reference string) float64 {
	if submitted == "" || reference == "" {
		return 0
	}
	ns := Normalize(submitted)
	nr := Normalize(reference)
	if ns == nr {
		return 1
	}
	if TokenSortRatio(ns, nr) >= m.th.CategoryFull {
		return 1
	}
	return 0
}

type dateMatcher struct{ th Thresholds }

func (m dateMatcher) Score(submitted, reference string) float64 {
	if submitted == "" || reference == "" {
		return 0
	}
	sy, ok := ExtractYear(submitted)
	if !ok {
		return 0
	}
	ry, ok := ExtractYear(reference)
	if !ok {
		return 0
	}
	if abs(sy-ry) <= m.th.DateYears {
		return 1
	}
	return 0
}

type numberMatcher struct{ th Thresholds }

func (m numberMatcher) Score(submitted, reference string) float64 {
	if submitted == "" || reference == "" {
		return 0
	}
	sub, ok := ExtractNumber(submitted)
	if !ok {
		return 0
	}
	ref, ok := ExtractNumber(reference)
	if !ok || ref == 0 {
		return 0
	}
	diffPct := math.Abs(sub-ref) / ref * 100
	switch {
	case diffPct <= m.th.NumericFullPct:
		return 1
	case diffPct <= m.th.NumericPartialPct:
		return 1 - (diffPct-m.th.NumericFullPct)/(m.th.NumericPartialPct-m.th.NumericFullPct)*0.5
	default:
		return 0
	}
}

type percentageMatcher struct{ th Thresholds }

func (m percentageMatcher) Score(submitted, reference string) float64 {
	if submitted == "" || reference == "" {
		return 0
	}
	sub, ok := ExtractPercentage(submitted)
	if !ok {
		return 0
	}
	ref, ok := ExtractPercentage(reference)
	if !ok {
		return 0
	}
	diff := math.Abs(sub - ref)
	switch {
	case diff <= m.th.PercentFullPts:
		return 1
	case diff <= m.th.PercentPartialPts:
		return 1 - (diff-m.th.PercentFullPts)/(m.th.PercentPartialPts-m.th.PercentFullPts)*0.5
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
