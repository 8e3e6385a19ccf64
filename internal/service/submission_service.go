package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/textextract"
)

const uploadCompletedMessage = "Assignment uploaded and analyzed successfully"

type submissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	ListByAccount(ctx context.Context, accountID string) ([]models.SubmissionSummary, error)
	Delete(ctx context.Context, id string) error
}

// DocumentStore stages uploaded originals. Stores that retain files keep them after analysis.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Retains() bool
}

type submissionAnalyzer interface {
	Analyze(ctx context.Context, submission *models.Submission) (*models.AnalysisRecord, error)
}

// FileUpload is a document received from a client.
type FileUpload struct {
	Filename string
	Content  []byte
}

// SubmissionConfig bounds accepted uploads.
type SubmissionConfig struct {
	MaxUploadBytes int64
}

// SubmissionService accepts documents, runs the analysis pipeline and serves stored results.
type SubmissionService struct {
	submissions submissionRepository
	analyses    analysisRepository
	store       DocumentStore
	analyzer    submissionAnalyzer
	metrics     *MetricsService
	logger      *zap.Logger
	config      SubmissionConfig
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(submissions submissionRepository, analyses analysisRepository, store DocumentStore, analyzer submissionAnalyzer, metrics *MetricsService, logger *zap.Logger, cfg SubmissionConfig) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &SubmissionService{
		submissions: submissions,
		analyses:    analyses,
		store:       store,
		analyzer:    analyzer,
		metrics:     metrics,
		logger:      logger,
		config:      cfg,
	}
}

// MaxUploadBytes exposes the configured upload limit.
func (s *SubmissionService) MaxUploadBytes() int64 {
	return s.config.MaxUploadBytes
}

// Upload stores, extracts and analyses a document owned by account.
func (s *SubmissionService) Upload(ctx context.Context, account *models.Account, file FileUpload) (*dto.UploadResponse, error) {
	format, ok := textextract.Supported(file.Filename)
	if !ok {
		s.metrics.RecordUpload("unknown", "rejected")
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, "Unsupported file format")
	}
	if int64(len(file.Content)) > s.config.MaxUploadBytes {
		s.metrics.RecordUpload(string(format), "rejected")
		return nil, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.config.MaxUploadBytes))
	}

	key := fmt.Sprintf("%s/%s-%s", account.ID, uuid.NewString(), sanitizeFilename(file.Filename))
	location, err := s.store.Put(ctx, key, file.Content, contentTypes[format])
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to store upload")
	}

	text, err := textextract.Extract(format, file.Content)
	if err != nil {
		s.discard(ctx, key)
		s.metrics.RecordUpload(string(format), "unreadable")
		return nil, appErrors.WrapAs(err, appErrors.ErrUnreadableFile, "Error reading file: "+err.Error())
	}

	submission := &models.Submission{
		AccountID:    account.ID,
		Filename:     file.Filename,
		OriginalText: text,
		WordCount:    textextract.WordCount(text),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.discard(ctx, key)
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to store submission")
	}

	record, err := s.analyzer.Analyze(ctx, submission)
	if !s.store.Retains() {
		s.discard(ctx, key)
	}
	if err != nil {
		if delErr := s.submissions.Delete(ctx, submission.ID); delErr != nil {
			s.logger.Warn("failed to remove unanalysed submission", zap.String("submission_id", submission.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.metrics.RecordUpload(string(format), "analyzed")
	s.logger.Info("submission analyzed",
		zap.String("submission_id", submission.ID),
		zap.String("analysis_id", record.ID),
		zap.String("location", location),
		zap.Int("word_count", submission.WordCount),
		zap.Bool("degraded", record.Degraded()),
	)

	return &dto.UploadResponse{
		JobID:        record.ID,
		Message:      uploadCompletedMessage,
		Status:       "completed",
		AssignmentID: submission.ID,
		AnalysisID:   record.ID,
		Degraded:     record.Degraded(),
	}, nil
}

// GetAnalysis returns an analysis only when its submission belongs to accountID.
func (s *SubmissionService) GetAnalysis(ctx context.Context, accountID, analysisID string) (*models.AnalysisRecord, error) {
	if _, err := uuid.Parse(analysisID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Analysis not found")
	}
	record, err := s.analyses.FindOwned(ctx, analysisID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Analysis not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load analysis")
	}
	return record, nil
}

// ListSubmissions returns the caller's submissions, newest first.
func (s *SubmissionService) ListSubmissions(ctx context.Context, accountID string) ([]models.SubmissionSummary, error) {
	items, err := s.submissions.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list submissions")
	}
	return items, nil
}

func (s *SubmissionService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove staged upload", zap.String("key", key), zap.Error(err))
	}
}

var contentTypes = map[textextract.Format]string{
	textextract.FormatPDF:  "application/pdf",
	textextract.FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	textextract.FormatTXT:  "text/plain; charset=utf-8",
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
