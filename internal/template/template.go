// Package template defines battle templates: the per-round configuration of
// expected fields, their weights, and comparison types.
package template

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/warroom/scoring-service/internal/similarity"
)

// BattleTemplate declares the graded fields for one battle round. Matchers
// are bound per field when the template is registered, so an invalid field
// type is rejected at load time instead of defaulting at grading time.
type BattleTemplate struct {
	BattleNumber   int                             `yaml:"battle_number" json:"battle_number"`
	Name           string                          `yaml:"name" json:"name"`
	FieldOrder     []string                        `yaml:"fields" json:"fields"`
	FieldWeights   map[string]float64              `yaml:"field_weights" json:"field_weights"`
	RequiredFields []string                        `yaml:"required_fields" json:"required_fields"`
	FieldTypes     map[string]similarity.FieldType `yaml:"field_types" json:"field_types"`

	matchers map[string]similarity.Matcher
}

// Matcher returns the bound matcher for a field. Only valid after the
// template has been registered.
func (t *BattleTemplate) Matcher(field string) similarity.Matcher {
	return t.matchers[field]
}

// WeightSum returns the sum of all field weights. Battle templates do not
// share a uniform sum; the engine normalizes against a fixed constant
// regardless.
func (t *BattleTemplate) WeightSum() float64 {
	var sum float64
	for _, w := range t.FieldWeights {
		sum += w
	}
	return sum
}

func (t *BattleTemplate) validate() error {
	var errs []string

	if t.BattleNumber <= 0 {
		errs = append(errs, "battle_number must be positive")
	}
	if len(t.FieldWeights) == 0 {
		errs = append(errs, "field_weights must not be empty")
	}
	for field, w := range t.FieldWeights {
		if w <= 0 {
			errs = append(errs, fmt.Sprintf("weight for %s must be positive", field))
		}
	}
	for _, field := range t.RequiredFields {
		if _, ok := t.FieldWeights[field]; !ok {
			errs = append(errs, fmt.Sprintf("required field %s has no weight", field))
		}
	}
	for field := range t.FieldTypes {
		if _, ok := t.FieldWeights[field]; !ok {
			errs = append(errs, fmt.Sprintf("typed field %s has no weight", field))
		}
	}
	if len(t.FieldOrder) != len(t.FieldWeights) {
		errs = append(errs, "fields must list every weighted field exactly once")
	}
	for _, field := range t.FieldOrder {
		if _, ok := t.FieldWeights[field]; !ok {
			errs = append(errs, fmt.Sprintf("ordered field %s has no weight", field))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("template: battle %d invalid: %s", t.BattleNumber, strings.Join(errs, "; "))
	}
	return nil
}

// bind resolves one matcher per weighted field. Fields with no declared type
// use the name algorithm.
func (t *BattleTemplate) bind(th similarity.Thresholds) error {
	t.matchers = make(map[string]similarity.Matcher, len(t.FieldWeights))
	for field := range t.FieldWeights {
		ft, ok := t.FieldTypes[field]
		if !ok {
			ft = similarity.TypeName
		}
		m, err := similarity.MatcherFor(ft, th)
		if err != nil {
			return eris.Wrapf(err, "template: battle %d field %s", t.BattleNumber, field)
		}
		t.matchers[field] = m
	}
	return nil
}
