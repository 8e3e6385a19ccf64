package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

const sourceColumns = `id, title, authors, publication_year, abstract, source_type, created_at`

const searchDocument = `to_tsvector('english', title || ' ' || abstract || ' ' || authors)`

// SourceRepository queries the academic source catalogue.
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository constructs the repository.
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Search matches the query with full-text relevance or substring containment on title/abstract.
// Ties on rank are broken by id so identical inputs yield identical ordering.
func (r *SourceRepository) Search(ctx context.Context, query string, limit int) ([]models.RankedSource, error) {
	sqlQuery := `SELECT ` + sourceColumns + `, ts_rank(` + searchDocument + `, plainto_tsquery('english', $1)) AS rank
FROM academic_sources
WHERE ` + searchDocument + ` @@ plainto_tsquery('english', $1) OR abstract ILIKE $2 OR title ILIKE $2
ORDER BY rank DESC, id ASC
LIMIT $3`
	items := make([]models.RankedSource, 0, limit)
	if err := r.db.SelectContext(ctx, &items, sqlQuery, query, likePattern(query), limit); err != nil {
		return nil, fmt.Errorf("search sources: %w", err)
	}
	return items, nil
}

// Sample returns up to limit sources without ranking.
func (r *SourceRepository) Sample(ctx context.Context, limit int) ([]models.AcademicSource, error) {
	sqlQuery := `SELECT ` + sourceColumns + ` FROM academic_sources ORDER BY id LIMIT $1`
	items := make([]models.AcademicSource, 0, limit)
	if err := r.db.SelectContext(ctx, &items, sqlQuery, limit); err != nil {
		return nil, fmt.Errorf("sample sources: %w", err)
	}
	return items, nil
}

func likePattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(query) + "%"
}
