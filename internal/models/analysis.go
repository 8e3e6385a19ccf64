package models

import (
	"database/sql/driver"
	"time"
)

// Outcome tells a genuine external answer apart from a locally substituted placeholder.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// Plagiarism confidence labels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// FlaggedSection is a span of the submission that resembles a source.
type FlaggedSection struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// FlaggedSections is persisted as a JSONB array.
type FlaggedSections []FlaggedSection

func (f FlaggedSections) Value() (driver.Value, error) {
	return jsonValue(f, "[]")
}

func (f *FlaggedSections) Scan(value interface{}) error {
	return jsonScan(value, f, "models.FlaggedSections")
}

// StringArray stores string lists as JSON.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	return jsonValue(a, "[]")
}

func (a *StringArray) Scan(value interface{}) error {
	return jsonScan(value, a, "models.StringArray")
}

// AnalysisRecord is the stored result of running the analysis pipeline over one submission.
type AnalysisRecord struct {
	ID                      string           `db:"id" json:"id"`
	AssignmentID            string           `db:"assignment_id" json:"assignment_id"`
	SuggestedSources        SourceReferences `db:"suggested_sources" json:"suggested_sources"`
	PlagiarismScore         float64          `db:"plagiarism_score" json:"plagiarism_score"`
	FlaggedSections         FlaggedSections  `db:"flagged_sections" json:"flagged_sections"`
	ResearchSuggestions     string           `db:"research_suggestions" json:"research_suggestions"`
	CitationRecommendations string           `db:"citation_recommendations" json:"citation_recommendations"`
	Topic                   string           `db:"topic" json:"topic"`
	Themes                  StringArray      `db:"themes" json:"themes"`
	ResearchQuestions       StringArray      `db:"research_questions" json:"research_questions"`
	AcademicLevel           string           `db:"academic_level" json:"academic_level"`
	ConfidenceScore         float64          `db:"confidence_score" json:"confidence_score"`
	SearchOutcome           Outcome          `db:"search_outcome" json:"search_outcome"`
	AnalysisOutcome         Outcome          `db:"analysis_outcome" json:"analysis_outcome"`
	PlagiarismOutcome       Outcome          `db:"plagiarism_outcome" json:"plagiarism_outcome"`
	AnalyzedAt              time.Time        `db:"analyzed_at" json:"analyzed_at"`
}

// Degraded reports whether any pipeline step fell back to a placeholder.
func (r *AnalysisRecord) Degraded() bool {
	return r.SearchOutcome == OutcomeDegraded || r.AnalysisOutcome == OutcomeDegraded || r.PlagiarismOutcome == OutcomeDegraded
}
