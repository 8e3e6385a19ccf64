package models

import "time"

// Submission is one uploaded document and its extracted text. Rows are never updated.
type Submission struct {
	ID           string    `db:"id" json:"id"`
	AccountID    string    `db:"student_id" json:"student_id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalText string    `db:"original_text" json:"-"`
	WordCount    int       `db:"word_count" json:"word_count"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// SubmissionSummary lists a submission with its analysis, if any.
type SubmissionSummary struct {
	ID              string    `db:"id" json:"id"`
	Filename        string    `db:"filename" json:"filename"`
	WordCount       int       `db:"word_count" json:"word_count"`
	UploadedAt      time.Time `db:"uploaded_at" json:"uploaded_at"`
	AnalysisID      *string   `db:"analysis_id" json:"analysis_id,omitempty"`
	PlagiarismScore *float64  `db:"plagiarism_score" json:"plagiarism_score,omitempty"`
}
