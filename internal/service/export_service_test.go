package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/export"
)

type stubAnalysisLoader struct {
	record *models.AnalysisRecord
	err    error
}

func (s *stubAnalysisLoader) GetAnalysis(ctx context.Context, accountID, analysisID string) (*models.AnalysisRecord, error) {
	return s.record, s.err
}

type failingRenderer struct{}

func (failingRenderer) Render(report export.Report) ([]byte, error) {
	return nil, errors.New("renderer exploded")
}

func exportRecord() *models.AnalysisRecord {
	year := 2017
	return &models.AnalysisRecord{
		ID:               "an1",
		AssignmentID:     "sub1",
		Topic:            "Transformers",
		Themes:           models.StringArray{"Attention"},
		PlagiarismScore:  12.5,
		ConfidenceScore:  0.5,
		SuggestedSources: models.SourceReferences{{Title: "Attention Is All You Need", Authors: "Vaswani et al.", Year: &year, Type: models.SourceTypePaper, SimilarityScore: 0.8}},
		FlaggedSections:  models.FlaggedSections{{Text: "copied text", Source: "s1", Similarity: 0.9}},
		AnalysisOutcome:  models.OutcomeDegraded,
		AnalyzedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewExportService(&stubAnalysisLoader{record: exportRecord()}, nil, nil, nil)

	res, err := svc.Render(context.Background(), "a1", "an1", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "analysis-an1.csv", res.Filename)
	assert.Equal(t, "text/csv", res.ContentType)
	body := string(res.Data)
	assert.Contains(t, body, "Topic,Transformers")
	assert.Contains(t, body, "Plagiarism score,12.50")
	assert.Contains(t, body, "Attention Is All You Need,Vaswani et al.,2017,paper,0.80")
	assert.Contains(t, body, "Note,")
}

func TestExportPDFDefault(t *testing.T) {
	svc := NewExportService(&stubAnalysisLoader{record: exportRecord()}, nil, nil, nil)

	res, err := svc.Render(context.Background(), "a1", "an1", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF-")))
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewExportService(&stubAnalysisLoader{record: exportRecord()}, nil, nil, nil)

	_, err := svc.Render(context.Background(), "a1", "an1", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportMissingAnalysis(t *testing.T) {
	svc := NewExportService(&stubAnalysisLoader{err: appErrors.Clone(appErrors.ErrNotFound, "Analysis not found")}, nil, nil, nil)

	_, err := svc.Render(context.Background(), "a1", "an1", "pdf")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportRendererFailure(t *testing.T) {
	svc := NewExportService(&stubAnalysisLoader{record: exportRecord()}, failingRenderer{}, failingRenderer{}, nil)

	_, err := svc.Render(context.Background(), "a1", "an1", "csv")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
