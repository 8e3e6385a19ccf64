package models

import (
	"database/sql/driver"
	"time"
)

// SourceType classifies an academic source.
type SourceType string

const (
	SourceTypeTextbook SourceType = "textbook"
	SourceTypePaper    SourceType = "paper"
	SourceTypeArticle  SourceType = "article"
	SourceTypeThesis   SourceType = "thesis"
	SourceTypeWebsite  SourceType = "website"
)

// AcademicSource is a reference work seeded at deployment time.
type AcademicSource struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Authors         string     `db:"authors" json:"authors"`
	PublicationYear *int       `db:"publication_year" json:"publication_year,omitempty"`
	Abstract        string     `db:"abstract" json:"abstract"`
	FullText        string     `db:"full_text" json:"-"`
	SourceType      SourceType `db:"source_type" json:"source_type"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// RankedSource is a catalogue row annotated with its relevance rank.
type RankedSource struct {
	AcademicSource
	Rank float64 `db:"rank"`
}

// SourceReference is the compact source summary stored on analysis records and returned by search.
type SourceReference struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Authors         string     `json:"authors"`
	Year            *int       `json:"year"`
	Abstract        string     `json:"abstract"`
	Type            SourceType `json:"type"`
	SimilarityScore float64    `json:"similarity_score"`
}

// SourceReferences is persisted as a JSONB array.
type SourceReferences []SourceReference

func (s SourceReferences) Value() (driver.Value, error) {
	return jsonValue(s, "[]")
}

func (s *SourceReferences) Scan(value interface{}) error {
	return jsonScan(value, s, "models.SourceReferences")
}
