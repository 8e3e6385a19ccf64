package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		student_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS academic_sources (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		authors TEXT NOT NULL DEFAULT '',
		publication_year INTEGER,
		abstract TEXT NOT NULL DEFAULT '',
		full_text TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL DEFAULT 'paper',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_academic_sources_fts ON academic_sources
		USING GIN (to_tsvector('english', title || ' ' || abstract || ' ' || authors))`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		filename TEXT NOT NULL,
		original_text TEXT NOT NULL,
		word_count INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_student ON assignments (student_id)`,
	`CREATE TABLE IF NOT EXISTS analysis_results (
		id UUID PRIMARY KEY,
		assignment_id UUID NOT NULL UNIQUE REFERENCES assignments(id),
		suggested_sources JSONB NOT NULL DEFAULT '[]',
		plagiarism_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		flagged_sections JSONB NOT NULL DEFAULT '[]',
		research_suggestions TEXT NOT NULL DEFAULT '',
		citation_recommendations TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		themes JSONB NOT NULL DEFAULT '[]',
		research_questions JSONB NOT NULL DEFAULT '[]',
		academic_level TEXT NOT NULL DEFAULT '',
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		search_outcome TEXT NOT NULL DEFAULT 'ok',
		analysis_outcome TEXT NOT NULL DEFAULT 'ok',
		plagiarism_outcome TEXT NOT NULL DEFAULT 'ok',
		analyzed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables the API relies on when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
