package engine

import (
	"github.com/warroom/scoring-service/internal/model"
	"github.com/warroom/scoring-service/internal/reference"
	"github.com/warroom/scoring-service/internal/similarity"
	"github.com/warroom/scoring-service/internal/template"
)

// accuracy scores every weighted field of the template against the reference
// dataset and returns the accuracy total plus one detail per field, in the
// template's declared field order.
func (e *Engine) accuracy(sub *model.Submission, tpl *template.BattleTemplate) (float64, []model.FieldAccuracyDetail) {
	var total float64
	details := make([]model.FieldAccuracyDetail, 0, len(tpl.FieldOrder))

	for _, field := range tpl.FieldOrder {
		weight := tpl.FieldWeights[field]
		submitted := sub.FieldText(field)

		refValue, found := e.resolver.Resolve(field)
		if !found {
			details = append(details, model.FieldAccuracyDetail{
				Field:     field,
				Submitted: submitted,
				Weight:    weight,
			})
			continue
		}

		score := e.matchScore(tpl.Matcher(field), submitted, refValue)
		contribution := weight * score
		total += contribution

		details = append(details, model.FieldAccuracyDetail{
			Field:         field,
			Submitted:     submitted,
			FoundInSource: true,
			MatchScore:    score,
			Weight:        weight,
			Contribution:  contribution,
		})
	}

	return total, details
}

// matchScore compares submitted text against a resolved reference value.
// Sequence values are scored per candidate and combined by the list
// strategy (maximum under the default best-match policy).
func (e *Engine) matchScore(m similarity.Matcher, submitted string, refValue any) float64 {
	if seq, ok := refValue.([]any); ok {
		scores := make([]float64, 0, len(seq))
		for _, candidate := range seq {
			scores = append(scores, m.Score(submitted, reference.Label(candidate)))
		}
		return e.strategy.Combine(scores)
	}
	return m.Score(submitted, model.CoerceText(refValue))
}
