package engine

import (
	"fmt"
	"strings"
)

// explanation renders a short justification from the already-computed
// component scores. Bucketing breakpoints are fixed against the nominal
// 60/10/15 component maxima.
func explanation(accuracy, speed, source, confidence float64, escalated bool) string {
	parts := make([]string, 0, 4)

	switch {
	case accuracy >= 50:
		parts = append(parts, fmt.Sprintf("Strong data accuracy (%.1f/60 points)", accuracy))
	case accuracy >= 30:
		parts = append(parts, fmt.Sprintf("Moderate data accuracy (%.1f/60 points)", accuracy))
	default:
		parts = append(parts, fmt.Sprintf("Weak data accuracy (%.1f/60 points)", accuracy))
	}

	switch {
	case speed >= 8:
		parts = append(parts, fmt.Sprintf("Fast submission (%.1f/10 points)", speed))
	case speed >= 5:
		parts = append(parts, fmt.Sprintf("Moderate speed (%.1f/10 points)", speed))
	default:
		parts = append(parts, fmt.Sprintf("Slow submission (%.1f/10 points)", speed))
	}

	switch {
	case source >= 12:
		parts = append(parts, fmt.Sprintf("High-quality sources (%.1f/15 points)", source))
	case source >= 8:
		parts = append(parts, fmt.Sprintf("Moderate source quality (%.1f/15 points)", source))
	default:
		parts = append(parts, fmt.Sprintf("Low source quality (%.1f/15 points)", source))
	}

	switch {
	case escalated:
		parts = append(parts, "Escalated for human review due to low confidence or missing evidence.")
	case confidence >= 0.8:
		parts = append(parts, "High confidence in scoring accuracy.")
	default:
		parts = append(parts, "Moderate confidence in scoring accuracy.")
	}

	return strings.Join(parts, ". ") + "."
}
