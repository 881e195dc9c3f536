// Package engine implements the deterministic scoring engine for battle
// submissions. Grading is a pure function of the submission, the template
// registry, the reference dataset, and the scoring configuration, all of
// which are immutable after startup.
package engine

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warroom/scoring-service/internal/config"
	"github.com/warroom/scoring-service/internal/model"
	"github.com/warroom/scoring-service/internal/reference"
	"github.com/warroom/scoring-service/internal/similarity"
	"github.com/warroom/scoring-service/internal/template"
)

// ThresholdsFrom maps scoring configuration onto matcher thresholds.
func ThresholdsFrom(c config.ScoringConfig) similarity.Thresholds {
	return similarity.Thresholds{
		NameFull:          c.NameSimilarityThreshold,
		NamePartial:       c.NamePartialThreshold,
		CategoryFull:      c.CategorySimilarityThreshold,
		DateYears:         c.DateToleranceYears,
		NumericFullPct:    c.NumericTolerancePercent,
		NumericPartialPct: c.NumericPartialTolerancePercent,
		PercentFullPts:    c.PercentageTolerance,
		PercentPartialPts: c.PercentagePartialTolerance,
	}
}

// scaleDenominator is the fixed normalization constant: 60 accuracy +
// 10 speed + 15 source. Battle weight sums are not uniform across templates,
// so effective maxima differ per battle.
const scaleDenominator = 85.0

// ErrInvalidTemplate wraps template.ErrUnknownBattle for callers that reject
// before grading.
var ErrInvalidTemplate = template.ErrUnknownBattle

// Engine grades submissions. Safe for concurrent use; holds no per-call
// state.
type Engine struct {
	registry *template.Registry
	resolver *reference.Resolver
	strategy reference.Strategy
	cfg      config.ScoringConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithListStrategy replaces the best-match list policy.
func WithListStrategy(s reference.Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// New creates an Engine over immutable collaborators.
func New(registry *template.Registry, resolver *reference.Resolver, cfg config.ScoringConfig, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		resolver: resolver,
		strategy: reference.BestMatch{},
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grade scores one submission against its battle template and the reference
// dataset. Repeated calls with identical inputs produce identical results.
func (e *Engine) Grade(sub *model.Submission) (*model.GradeResult, error) {
	tpl, err := e.registry.Get(sub.BattleNo)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: grade submission %s", sub.SubmissionID)
	}

	accuracyRaw, details := e.accuracy(sub, tpl)
	speedRaw := e.speedScore(sub.TimeTakenSeconds, sub.TotalTimeSeconds)
	sourceRaw, credibility, verified := e.sourceScore(sub.SourceLink, sub.CompanyReference)

	raw := accuracyRaw + speedRaw + sourceRaw
	scaledPercent := raw / scaleDenominator * 100
	points := scaledPercent / 100 * 20

	matched := sub.CompanyReference != nil && sub.CompanyReference.UseReferenceAsPrimary

	conf := e.confidence(accuracyRaw, speedRaw, sourceRaw, len(details))
	escalated := e.shouldEscalate(conf, credibility, details)

	result := &model.GradeResult{
		SubmissionID:        sub.SubmissionID,
		Team:                sub.Team,
		BattleNo:            sub.BattleNo,
		RawAIPercent:        raw,
		ScaledBattlePercent: scaledPercent,
		BattlePointsOutOf20: points,
		Breakdown: model.Breakdown{
			DataAccuracyRaw:      accuracyRaw,
			SpeedRaw:             speedRaw,
			SourceRaw:            sourceRaw,
			DataAccuracyDetails:  details,
			SourceCredibility:    credibility,
			SourceVerified:       verified,
			MatchedFromReference: matched,
			ReferenceVerified:    matched,
		},
		Diagnostics: model.Diagnostics{
			MissingFields:       missingRequired(sub, tpl),
			EvidenceNotFoundFor: evidenceNotFound(details),
			FetchWarnings:       []string{},
			ConflictDetails:     map[string]any{},
		},
		EscalatedForHumanReview: escalated,
		Confidence:              conf,
		ExplainText:             explanation(accuracyRaw, speedRaw, sourceRaw, conf, escalated),
	}
	if sub.CompanyReference != nil {
		result.Breakdown.ReferenceCompanyID = sub.CompanyReference.CompanyID
	}

	zap.L().Debug("engine: graded submission",
		zap.String("submission_id", sub.SubmissionID),
		zap.Float64("raw", raw),
		zap.Float64("confidence", conf),
		zap.Bool("escalated", escalated),
	)

	return result, nil
}

// missingRequired lists required fields that are absent or empty in the
// submission.
func missingRequired(sub *model.Submission, tpl *template.BattleTemplate) []string {
	missing := []string{}
	for _, field := range tpl.RequiredFields {
		v, ok := sub.Fields[field]
		if !ok || model.Falsy(v) {
			missing = append(missing, field)
		}
	}
	return missing
}

func evidenceNotFound(details []model.FieldAccuracyDetail) []string {
	fields := []string{}
	for _, d := range details {
		if !d.FoundInSource {
			fields = append(fields, d.Field)
		}
	}
	return fields
}
