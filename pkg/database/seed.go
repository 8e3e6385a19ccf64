package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SampleSource is a reference work inserted into an empty catalogue.
type SampleSource struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Authors         string `db:"authors"`
	PublicationYear int    `db:"publication_year"`
	Abstract        string `db:"abstract"`
	FullText        string `db:"full_text"`
	SourceType      string `db:"source_type"`
}

// SampleSources are the works seeded at deployment time.
var SampleSources = []SampleSource{
	{
		Title:           "Machine Learning: A Probabilistic Perspective",
		Authors:         "Kevin P. Murphy",
		PublicationYear: 2012,
		Abstract:        "This textbook offers a comprehensive introduction to machine learning from a probabilistic perspective.",
		FullText:        "Full text content here...",
		SourceType:      "textbook",
	},
	{
		Title:           "Attention Is All You Need",
		Authors:         "Vaswani et al.",
		PublicationYear: 2017,
		Abstract:        "The dominant sequence transduction models are based on complex recurrent or convolutional neural networks.",
		FullText:        "Full text content here...",
		SourceType:      "paper",
	},
}

// Seed inserts SampleSources when the catalogue is empty and reports how many rows were written.
func Seed(ctx context.Context, db *sqlx.DB) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM academic_sources`); err != nil {
		return 0, fmt.Errorf("count academic sources: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO academic_sources (id, title, authors, publication_year, abstract, full_text, source_type) VALUES (:id, :title, :authors, :publication_year, :abstract, :full_text, :source_type)`
	for _, s := range SampleSources {
		s.ID = uuid.NewString()
		if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
			return 0, fmt.Errorf("insert sample source %q: %w", s.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(SampleSources), nil
}
