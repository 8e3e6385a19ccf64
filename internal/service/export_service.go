package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/export"
)

// ExportFormat is a downloadable report encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered report ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type analysisLoader interface {
	GetAnalysis(ctx context.Context, accountID, analysisID string) (*models.AnalysisRecord, error)
}

type csvRenderer interface {
	Render(report export.Report) ([]byte, error)
}

type pdfRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportService renders stored analyses as CSV or PDF.
type ExportService struct {
	analyses analysisLoader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(analyses analysisLoader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{analyses: analyses, csv: csv, pdf: pdf, logger: logger}
}

// Render loads an analysis owned by accountID and encodes it as format.
func (s *ExportService) Render(ctx context.Context, accountID, analysisID string, format ExportFormat) (*ExportResult, error) {
	format = ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = ExportPDF
	}
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	record, err := s.analyses.GetAnalysis(ctx, accountID, analysisID)
	if err != nil {
		return nil, err
	}

	report := buildReport(record)
	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportCSV:
		data, err = s.csv.Render(report)
		contentType = "text/csv"
	default:
		data, err = s.pdf.Render(report)
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("render export failed", zap.String("analysis_id", analysisID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render report")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("analysis-%s.%s", record.ID, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func buildReport(record *models.AnalysisRecord) export.Report {
	report := export.Report{
		Title: "Assignment Analysis Report",
		Fields: []export.Field{
			{Label: "Analysis ID", Value: record.ID},
			{Label: "Assignment ID", Value: record.AssignmentID},
			{Label: "Analyzed at", Value: record.AnalyzedAt.UTC().Format(time.RFC3339)},
			{Label: "Topic", Value: record.Topic},
			{Label: "Academic level", Value: record.AcademicLevel},
			{Label: "Themes", Value: strings.Join(record.Themes, "; ")},
			{Label: "Research questions", Value: strings.Join(record.ResearchQuestions, "; ")},
			{Label: "Plagiarism score", Value: strconv.FormatFloat(record.PlagiarismScore, 'f', 2, 64)},
			{Label: "Confidence score", Value: strconv.FormatFloat(record.ConfidenceScore, 'f', 2, 64)},
			{Label: "Research suggestions", Value: record.ResearchSuggestions},
			{Label: "Citation style", Value: record.CitationRecommendations},
		},
	}
	if record.Degraded() {
		report.Fields = append(report.Fields, export.Field{Label: "Note", Value: "Some results are placeholders because an external service was unavailable."})
	}

	sources := export.Table{Title: "Suggested sources", Headers: []string{"Title", "Authors", "Year", "Type", "Similarity"}}
	for _, src := range record.SuggestedSources {
		year := ""
		if src.Year != nil {
			year = strconv.Itoa(*src.Year)
		}
		sources.Rows = append(sources.Rows, []string{src.Title, src.Authors, year, string(src.Type), strconv.FormatFloat(src.SimilarityScore, 'f', 2, 64)})
	}

	flagged := export.Table{Title: "Flagged sections", Headers: []string{"Text", "Source", "Similarity"}}
	for _, section := range record.FlaggedSections {
		flagged.Rows = append(flagged.Rows, []string{section.Text, section.Source, strconv.FormatFloat(section.Similarity, 'f', 2, 64)})
	}

	report.Tables = []export.Table{sources, flagged}
	return report
}
