package model

import "time"

// EvidenceSnippet is a short excerpt of harvested external text supporting
// or contesting a submitted value.
type EvidenceSnippet struct {
	SnapshotPath string `json:"snapshot_path"`
	XPath        string `json:"xpath"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	TextSnippet  string `json:"text_snippet"`
}

// FieldAccuracyDetail records how one submitted field compared against the
// reference dataset.
type FieldAccuracyDetail struct {
	Field            string            `json:"field"`
	Submitted        string            `json:"submitted"`
	FoundInSource    bool              `json:"found_in_source"`
	MatchScore       float64           `json:"match_score"`
	Weight           float64           `json:"weight"`
	Contribution     float64           `json:"contribution"`
	EvidenceSnippets []EvidenceSnippet `json:"evidence_snippets,omitempty"`
}

// Breakdown decomposes a composite score into its accuracy, speed, and
// source components.
type Breakdown struct {
	DataAccuracyRaw      float64               `json:"data_accuracy_raw"`
	SpeedRaw             float64               `json:"speed_raw"`
	SourceRaw            float64               `json:"source_raw"`
	DataAccuracyDetails  []FieldAccuracyDetail `json:"data_accuracy_details"`
	SourceCredibility    float64               `json:"source_credibility"`
	SourceVerified       bool                  `json:"source_verified"`
	MatchedFromReference bool                  `json:"matched_from_reference"`
	ReferenceCompanyID   string                `json:"reference_company_id,omitempty"`
	ReferenceVerified    bool                  `json:"reference_verified"`
}

// Diagnostics surfaces non-fatal grading observations.
type Diagnostics struct {
	MissingFields       []string       `json:"missing_fields"`
	EvidenceNotFoundFor []string       `json:"evidence_not_found_for"`
	FetchWarnings       []string       `json:"fetch_warnings"`
	ConflictDetails     map[string]any `json:"conflict_details"`
}

// GradeResult is the full graded outcome for one submission.
type GradeResult struct {
	SubmissionID            string      `json:"submission_id"`
	Team                    Team        `json:"team"`
	BattleNo                int         `json:"battle_no"`
	RawAIPercent            float64     `json:"raw_ai_percent"`
	ScaledBattlePercent     float64     `json:"scaled_battle_percent"`
	BattlePointsOutOf20     float64     `json:"battle_points_out_of_20"`
	Breakdown               Breakdown   `json:"breakdown"`
	Diagnostics             Diagnostics `json:"diagnostics"`
	EscalatedForHumanReview bool        `json:"escalated_for_human_review"`
	Confidence              float64     `json:"confidence"`
	ExplainText             string      `json:"explain_text"`
}

// Grade is a persisted grading record.
type Grade struct {
	ID        string      `json:"id"`
	Result    GradeResult `json:"result"`
	CreatedAt time.Time   `json:"created_at"`
}

// Override is a manual score correction recorded downstream of the engine.
// It never alters the stored engine output.
type Override struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	NewScore     float64   `json:"new_score"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
