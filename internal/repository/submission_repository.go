package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

// SubmissionRepository persists uploaded assignments.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.UploadedAt.IsZero() {
		sub.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, student_id, filename, original_text, word_count, uploaded_at) VALUES (:id, :student_id, :filename, :original_text, :word_count, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Delete removes a submission that never received an analysis.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

// ListByAccount returns the account's submissions, newest first, with their analysis ids.
func (r *SubmissionRepository) ListByAccount(ctx context.Context, accountID string) ([]models.SubmissionSummary, error) {
	const query = `SELECT a.id, a.filename, a.word_count, a.uploaded_at, ar.id AS analysis_id, ar.plagiarism_score
FROM assignments a
LEFT JOIN analysis_results ar ON ar.assignment_id = a.id
WHERE a.student_id = $1
ORDER BY a.uploaded_at DESC, a.id ASC`
	items := make([]models.SubmissionSummary, 0)
	if err := r.db.SelectContext(ctx, &items, query, accountID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return items, nil
}
