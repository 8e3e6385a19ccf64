package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/llm"
)

const (
	stepSearch     = "search"
	stepAnalysis   = "analysis"
	stepPlagiarism = "plagiarism"

	searchQueryChars     = 500
	analysisTextChars    = 2000
	plagiarismTextChars  = 1500
	promptSourceLimit    = 3
	sourceSummaryChars   = 300
	highConfidenceScore  = 0.8
	otherConfidenceScore = 0.5

	analysisSystemPrompt   = "You are an academic research assistant."
	plagiarismSystemPrompt = "You are a plagiarism detection system."
	analysisTemperature    = 0.3
	plagiarismTemperature  = 0.1

	defaultSuggestions = "Analysis complete."
	defaultCitation    = "APA"
)

var errUnexpectedReply = errors.New("reply is missing the expected fields")

type analysisRepository interface {
	Create(ctx context.Context, record *models.AnalysisRecord) error
	FindOwned(ctx context.Context, analysisID, accountID string) (*models.AnalysisRecord, error)
}

type sourceSearcher interface {
	Search(ctx context.Context, query string, topK int) SourceResult
}

// AnalysisResult is the structured reading of a submission produced by the language model.
type AnalysisResult struct {
	Topic                  string
	Themes                 []string
	ResearchQuestions      []string
	AcademicLevel          string
	Suggestions            string
	CitationRecommendation string
	Outcome                models.Outcome
}

// PlagiarismResult is the similarity verdict for a submission.
type PlagiarismResult struct {
	Score      float64
	Flagged    []models.FlaggedSection
	Confidence string
	Outcome    models.Outcome
}

// placeholderAnalysis is substituted whenever the model cannot be used.
func placeholderAnalysis() AnalysisResult {
	return AnalysisResult{
		Topic:                  "Artificial Intelligence in Education",
		Themes:                 []string{"Machine Learning", "Personalized Learning", "Ethical Considerations"},
		ResearchQuestions:      []string{"How can AI improve student outcomes?"},
		AcademicLevel:          "Undergraduate",
		Suggestions:            "Add more specific examples and references.",
		CitationRecommendation: "APA",
		Outcome:                models.OutcomeDegraded,
	}
}

func placeholderPlagiarism() PlagiarismResult {
	return PlagiarismResult{Score: 0, Flagged: []models.FlaggedSection{}, Confidence: models.ConfidenceLow, Outcome: models.OutcomeDegraded}
}

// AnalysisService runs retrieval, analysis and plagiarism checks over a submission and stores the record.
type AnalysisService struct {
	repo    analysisRepository
	sources sourceSearcher
	llm     llm.Client
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalysisService constructs the pipeline. client may be nil, in which case every model step degrades.
func NewAnalysisService(repo analysisRepository, sources sourceSearcher, client llm.Client, metrics *MetricsService, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{repo: repo, sources: sources, llm: client, metrics: metrics, logger: logger, now: time.Now}
}

// Configured reports whether a language model client is available.
func (s *AnalysisService) Configured() bool {
	return s.llm != nil
}

// Analyze runs the pipeline for submission and persists exactly one record.
func (s *AnalysisService) Analyze(ctx context.Context, submission *models.Submission) (*models.AnalysisRecord, error) {
	text := submission.OriginalText

	found := s.sources.Search(ctx, truncateRunes(text, searchQueryChars), DefaultTopK)
	s.metrics.RecordStepOutcome(stepSearch, found.Outcome)

	analysis := s.analyse(ctx, text, found.Sources)
	s.metrics.RecordStepOutcome(stepAnalysis, analysis.Outcome)

	plagiarism := s.checkPlagiarism(ctx, text, found.Sources)
	s.metrics.RecordStepOutcome(stepPlagiarism, plagiarism.Outcome)

	confidence := otherConfidenceScore
	if plagiarism.Confidence == models.ConfidenceHigh {
		confidence = highConfidenceScore
	}

	record := &models.AnalysisRecord{
		AssignmentID:            submission.ID,
		SuggestedSources:        found.Sources,
		PlagiarismScore:         plagiarism.Score,
		FlaggedSections:         plagiarism.Flagged,
		ResearchSuggestions:     analysis.Suggestions,
		CitationRecommendations: analysis.CitationRecommendation,
		Topic:                   analysis.Topic,
		Themes:                  analysis.Themes,
		ResearchQuestions:       analysis.ResearchQuestions,
		AcademicLevel:           analysis.AcademicLevel,
		ConfidenceScore:         confidence,
		SearchOutcome:           found.Outcome,
		AnalysisOutcome:         analysis.Outcome,
		PlagiarismOutcome:       plagiarism.Outcome,
		AnalyzedAt:              s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to store analysis")
	}

	if record.Degraded() {
		s.logger.Warn("analysis stored with degraded steps",
			zap.String("analysis_id", record.ID),
			zap.String("search", string(record.SearchOutcome)),
			zap.String("analysis", string(record.AnalysisOutcome)),
			zap.String("plagiarism", string(record.PlagiarismOutcome)),
		)
	}
	return record, nil
}

func (s *AnalysisService) analyse(ctx context.Context, text string, sources []models.SourceReference) AnalysisResult {
	if s.llm == nil {
		return placeholderAnalysis()
	}

	prompt := fmt.Sprintf(`Analyze this student assignment:

Assignment Text (first 2000 chars):
%s

Relevant Sources:
%s

Return JSON with: topic, themes, research_questions, academic_level, suggestions, citation_recommendation.`,
		truncateRunes(text, analysisTextChars), sourceContext(sources))

	raw, err := s.complete(ctx, stepAnalysis, analysisSystemPrompt, prompt, analysisTemperature)
	if err != nil {
		s.logger.Warn("analysis step degraded", zap.String("step", stepAnalysis), zap.Error(err))
		return placeholderAnalysis()
	}

	result, err := parseAnalysis(raw)
	if err != nil {
		s.logger.Warn("analysis step degraded", zap.String("step", stepAnalysis), zap.Error(err))
		return placeholderAnalysis()
	}
	return result
}

func (s *AnalysisService) checkPlagiarism(ctx context.Context, text string, sources []models.SourceReference) PlagiarismResult {
	if s.llm == nil {
		return placeholderPlagiarism()
	}

	limited := sources
	if len(limited) > promptSourceLimit {
		limited = limited[:promptSourceLimit]
	}
	encoded, err := json.MarshalIndent(limited, "", "  ")
	if err != nil {
		return placeholderPlagiarism()
	}

	prompt := fmt.Sprintf(`Compare assignment with sources. Return JSON with:
- plagiarism_score: 0-100
- flagged_sections: [{text: "...", source: "...", similarity: ...}]
- confidence: high/medium/low

Assignment: %s

Sources: %s`, truncateRunes(text, plagiarismTextChars), encoded)

	raw, err := s.complete(ctx, stepPlagiarism, plagiarismSystemPrompt, prompt, plagiarismTemperature)
	if err != nil {
		s.logger.Warn("plagiarism step degraded", zap.String("step", stepPlagiarism), zap.Error(err))
		return placeholderPlagiarism()
	}

	result, err := parsePlagiarism(raw)
	if err != nil {
		s.logger.Warn("plagiarism step degraded", zap.String("step", stepPlagiarism), zap.Error(err))
		return placeholderPlagiarism()
	}
	return result
}

func (s *AnalysisService) complete(ctx context.Context, purpose, system, prompt string, temperature float64) (string, error) {
	start := time.Now()
	raw, err := s.llm.CompleteJSON(ctx, llm.Request{Purpose: purpose, System: system, Prompt: prompt, Temperature: temperature})
	s.metrics.ObserveLLMRequest(s.llm.Provider(), purpose, time.Since(start))
	return raw, err
}

func sourceContext(sources []models.SourceReference) string {
	if len(sources) > promptSourceLimit {
		sources = sources[:promptSourceLimit]
	}
	blocks := make([]string, 0, len(sources))
	for i, src := range sources {
		year := "n.d."
		if src.Year != nil {
			year = strconv.Itoa(*src.Year)
		}
		blocks = append(blocks, fmt.Sprintf("Source %d: %s by %s (%s)\nAbstract: %s...",
			i+1, src.Title, src.Authors, year, truncateRunes(src.Abstract, sourceSummaryChars)))
	}
	return strings.Join(blocks, "\n\n")
}

func parseAnalysis(raw string) (AnalysisResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode analysis: %w", err)
	}
	if !hasAnyField(fields, "topic", "themes", "suggestions", "citation_recommendation") {
		return AnalysisResult{}, fmt.Errorf("decode analysis: %w", errUnexpectedReply)
	}

	result := AnalysisResult{
		Topic:                  jsonString(fields["topic"]),
		Themes:                 jsonStrings(fields["themes"]),
		ResearchQuestions:      jsonStrings(fields["research_questions"]),
		AcademicLevel:          jsonString(fields["academic_level"]),
		Suggestions:            jsonString(fields["suggestions"]),
		CitationRecommendation: jsonString(fields["citation_recommendation"]),
		Outcome:                models.OutcomeOK,
	}
	if result.Suggestions == "" {
		result.Suggestions = defaultSuggestions
	}
	if result.CitationRecommendation == "" {
		result.CitationRecommendation = defaultCitation
	}
	return result, nil
}

func parsePlagiarism(raw string) (PlagiarismResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return PlagiarismResult{}, fmt.Errorf("decode plagiarism: %w", err)
	}
	score, ok := jsonFloat(fields["plagiarism_score"])
	if !ok {
		return PlagiarismResult{}, fmt.Errorf("decode plagiarism: %w", errUnexpectedReply)
	}

	result := PlagiarismResult{
		Score:      clamp(score, 0, 100),
		Flagged:    []models.FlaggedSection{},
		Confidence: normaliseConfidence(jsonString(fields["confidence"])),
		Outcome:    models.OutcomeOK,
	}

	var sections []map[string]json.RawMessage
	if len(fields["flagged_sections"]) > 0 && json.Unmarshal(fields["flagged_sections"], &sections) == nil {
		for _, section := range sections {
			similarity, _ := jsonFloat(section["similarity"])
			result.Flagged = append(result.Flagged, models.FlaggedSection{
				Text:       jsonString(section["text"]),
				Source:     jsonString(section["source"]),
				Similarity: clamp(similarity, 0, 100),
			})
		}
	}
	return result, nil
}

func normaliseConfidence(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.ConfidenceHigh:
		return models.ConfidenceHigh
	case models.ConfidenceMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// hasAnyField reports whether fields carries a non-null value for one of keys.
func hasAnyField(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if raw, ok := fields[key]; ok && len(raw) > 0 && string(raw) != "null" {
			return true
		}
	}
	return false
}

// cleanText trims s and drops NUL characters, which Postgres text and jsonb reject.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// jsonString accepts a JSON string or renders any other scalar as text.
func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return cleanText(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanText(strings.Join(list, "; "))
	}
	return cleanText(string(raw))
}

// jsonStrings accepts a list of strings or a single string.
func jsonStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if text := cleanText(fmt.Sprint(item)); text != "" {
				out = append(out, text)
			}
		}
		return out
	}
	if s := jsonString(raw); s != "" {
		out = append(out, s)
	}
	return out
}

// jsonFloat accepts a number or a numeric string such as "42%".
func jsonFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
