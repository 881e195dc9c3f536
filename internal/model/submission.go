// Package model defines the wire and storage types for battle submission grading.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// Team identifies a competing team.
type Team string

const (
	TeamAlpha Team = "Alpha"
	TeamDelta Team = "Delta"
)

// Valid reports whether the team is one of the declared teams.
func (t Team) Valid() bool {
	return t == TeamAlpha || t == TeamDelta
}

// AttachmentType describes the kind of submitted attachment.
type AttachmentType string

const (
	AttachmentScreenshot AttachmentType = "screenshot"
	AttachmentPDF        AttachmentType = "pdf"
)

// Attachment is supporting material attached to a submission. The grading
// engine treats attachments as opaque.
type Attachment struct {
	Type AttachmentType `json:"type"`
	URL  string         `json:"url"`
}

// CompanyReference declares that the submission was matched against a known
// reference company. When UseReferenceAsPrimary is set, source scoring is
// bypassed with full credit.
type CompanyReference struct {
	CompanyID             string `json:"company_id"`
	UseReferenceAsPrimary bool   `json:"use_reference_as_primary"`
}

// Submission is one team's answer set for a battle round.
type Submission struct {
	Team             Team              `json:"team"`
	BattleNo         int               `json:"battle_no"`
	SubmissionID     string            `json:"submission_id"`
	SubmittedAt      time.Time         `json:"submitted_at"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
	TotalTimeSeconds int               `json:"total_time_seconds"`
	CompanyReference *CompanyReference `json:"company_reference,omitempty"`
	SourceLink       string            `json:"source_link,omitempty"`
	Fields           map[string]any    `json:"fields"`
	Attachments      []Attachment      `json:"attachments,omitempty"`
}

// FieldText returns the submitted value for a field coerced to text,
// or "" when the field is absent.
func (s *Submission) FieldText(name string) string {
	v, ok := s.Fields[name]
	if !ok {
		return ""
	}
	return CoerceText(v)
}

// CoerceText renders an arbitrary JSON-decoded value as comparison text.
// Whole-number floats render without a decimal point.
func CoerceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Falsy reports whether a submitted value counts as missing for the
// required-field check: absent, nil, empty text, zero, false, or an
// empty collection.
func Falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
