package engine

import "github.com/warroom/scoring-service/internal/model"

// fullCoverageFields is the field count treated as full coverage in the
// confidence blend.
const fullCoverageFields = 5.0

// confidence blends the three sub-scores with field coverage into [0,1]:
// 0.8 * raw/85 + 0.2 * min(1, fields/5), clamped.
func (e *Engine) confidence(accuracy, speed, source float64, fieldCount int) float64 {
	base := (accuracy + speed + source) / scaleDenominator

	coverage := float64(fieldCount) / fullCoverageFields
	if coverage > 1 {
		coverage = 1
	}

	conf := base*0.8 + coverage*0.2
	if conf > 1 {
		return 1
	}
	if conf < 0 {
		return 0
	}
	return conf
}

// shouldEscalate flags the result for human review. Advisory only; a result
// is always produced.
func (e *Engine) shouldEscalate(confidence, credibility float64, details []model.FieldAccuracyDetail) bool {
	if confidence < e.cfg.ConfidenceThreshold {
		return true
	}
	if credibility < e.cfg.SourceCredibilityThreshold {
		return true
	}

	var missing int
	for _, d := range details {
		if !d.FoundInSource {
			missing++
		}
	}
	return missing >= e.cfg.MaxMissingFields
}
