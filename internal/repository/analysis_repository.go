package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

const analysisColumns = `ar.id, ar.assignment_id, ar.suggested_sources, ar.plagiarism_score, ar.flagged_sections, ar.research_suggestions, ar.citation_recommendations, ar.topic, ar.themes, ar.research_questions, ar.academic_level, ar.confidence_score, ar.search_outcome, ar.analysis_outcome, ar.plagiarism_outcome, ar.analyzed_at`

// AnalysisRepository persists analysis records.
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository constructs the repository.
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores an analysis record. Records are immutable after insert.
func (r *AnalysisRepository) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}
	const query = `INSERT INTO analysis_results (id, assignment_id, suggested_sources, plagiarism_score, flagged_sections, research_suggestions, citation_recommendations, topic, themes, research_questions, academic_level, confidence_score, search_outcome, analysis_outcome, plagiarism_outcome, analyzed_at) VALUES (:id, :assignment_id, :suggested_sources, :plagiarism_score, :flagged_sections, :research_suggestions, :citation_recommendations, :topic, :themes, :research_questions, :academic_level, :confidence_score, :search_outcome, :analysis_outcome, :plagiarism_outcome, :analyzed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

// FindOwned returns the analysis only when its submission belongs to accountID.
func (r *AnalysisRepository) FindOwned(ctx context.Context, analysisID, accountID string) (*models.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analysis_results ar JOIN assignments a ON a.id = ar.assignment_id WHERE ar.id = $1 AND a.student_id = $2 LIMIT 1`
	var rec models.AnalysisRecord
	if err := r.db.GetContext(ctx, &rec, query, analysisID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	return &rec, nil
}
