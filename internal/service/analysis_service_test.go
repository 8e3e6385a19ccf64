package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/llm"
)

type fakeLLM struct {
	replies  map[string]string
	errs     map[string]error
	requests []llm.Request
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.Purpose]; err != nil {
		return "", err
	}
	return f.replies[req.Purpose], nil
}

func (f *fakeLLM) Provider() string { return "fake" }

type mockAnalysisRepo struct {
	records   map[string]*models.AnalysisRecord
	owners    map[string]string
	createErr error
}

func newMockAnalysisRepo() *mockAnalysisRepo {
	return &mockAnalysisRepo{records: make(map[string]*models.AnalysisRecord), owners: make(map[string]string)}
}

func (m *mockAnalysisRepo) Create(ctx context.Context, record *models.AnalysisRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = "an-" + record.AssignmentID
	m.records[record.ID] = record
	return nil
}

func (m *mockAnalysisRepo) FindOwned(ctx context.Context, analysisID, accountID string) (*models.AnalysisRecord, error) {
	record, ok := m.records[analysisID]
	if !ok || m.owners[record.AssignmentID] != accountID {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

type stubSearcher struct {
	result    SourceResult
	lastQuery string
	lastTopK  int
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) SourceResult {
	s.lastQuery = query
	s.lastTopK = topK
	return s.result
}

func fourSources() []models.SourceReference {
	year := 2017
	refs := make([]models.SourceReference, 0, 4)
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		refs = append(refs, models.SourceReference{ID: id, Title: "Title " + id, Authors: "Author", Year: &year, Abstract: strings.Repeat("x", 400), Type: models.SourceTypePaper, SimilarityScore: 0.8})
	}
	return refs
}

const goodAnalysis = `{"topic":"Transformers","themes":["Attention","NLP"],"research_questions":["Why attention?"],"academic_level":"Graduate","suggestions":"Cite more","citation_recommendation":"IEEE"}`

func TestAnalyzeHappyPath(t *testing.T) {
	repo := newMockAnalysisRepo()
	searcher := &stubSearcher{result: SourceResult{Sources: fourSources(), Outcome: models.OutcomeOK}}
	client := &fakeLLM{replies: map[string]string{
		stepAnalysis:   goodAnalysis,
		stepPlagiarism: `{"plagiarism_score": 42.5, "flagged_sections": [{"text":"copied","source":"s1","similarity":0.9}], "confidence": "HIGH"}`,
	}}
	svc := NewAnalysisService(repo, searcher, client, NewMetricsService(), zap.NewNop())

	text := strings.Repeat("word ", 1000)
	record, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: text})
	require.NoError(t, err)

	assert.Equal(t, 500, len([]rune(searcher.lastQuery)))
	assert.Equal(t, DefaultTopK, searcher.lastTopK)
	assert.Equal(t, "an-sub1", record.ID)
	assert.Equal(t, "Transformers", record.Topic)
	assert.Equal(t, models.StringArray{"Attention", "NLP"}, record.Themes)
	assert.Equal(t, "Cite more", record.ResearchSuggestions)
	assert.Equal(t, "IEEE", record.CitationRecommendations)
	assert.Equal(t, 42.5, record.PlagiarismScore)
	require.Len(t, record.FlaggedSections, 1)
	assert.Equal(t, 0.8, record.ConfidenceScore)
	assert.Len(t, record.SuggestedSources, 4)
	assert.False(t, record.Degraded())

	require.Len(t, client.requests, 2)
	analysisReq := client.requests[0]
	assert.Equal(t, analysisSystemPrompt, analysisReq.System)
	assert.Equal(t, 0.3, analysisReq.Temperature)
	assert.Contains(t, analysisReq.Prompt, "Source 3: Title s3 by Author (2017)")
	assert.NotContains(t, analysisReq.Prompt, "Source 4")
	assert.Contains(t, analysisReq.Prompt, strings.Repeat("x", 300)+"...")
	assert.NotContains(t, analysisReq.Prompt, strings.Repeat("x", 301))

	plagReq := client.requests[1]
	assert.Equal(t, plagiarismSystemPrompt, plagReq.System)
	assert.Equal(t, 0.1, plagReq.Temperature)
	assert.NotContains(t, plagReq.Prompt, `"s4"`)
}

func TestAnalyzeWithoutClientUsesPlaceholders(t *testing.T) {
	repo := newMockAnalysisRepo()
	searcher := &stubSearcher{result: SourceResult{Sources: []models.SourceReference{}, Outcome: models.OutcomeOK}}
	svc := NewAnalysisService(repo, searcher, nil, nil, nil)
	assert.False(t, svc.Configured())

	record, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: "Hello world"})
	require.NoError(t, err)

	placeholder := placeholderAnalysis()
	assert.Equal(t, placeholder.Topic, record.Topic)
	assert.Equal(t, "Add more specific examples and references.", record.ResearchSuggestions)
	assert.Equal(t, "APA", record.CitationRecommendations)
	assert.Equal(t, 0.0, record.PlagiarismScore)
	assert.Empty(t, record.FlaggedSections)
	assert.Equal(t, 0.5, record.ConfidenceScore)
	assert.Equal(t, models.OutcomeDegraded, record.AnalysisOutcome)
	assert.Equal(t, models.OutcomeDegraded, record.PlagiarismOutcome)
	assert.True(t, record.Degraded())
}

func TestAnalyzeDegradesOnProviderFailure(t *testing.T) {
	client := &fakeLLM{
		replies: map[string]string{stepAnalysis: "not json"},
		errs:    map[string]error{stepPlagiarism: errors.New("timeout")},
	}
	svc := NewAnalysisService(newMockAnalysisRepo(), &stubSearcher{result: SourceResult{Outcome: models.OutcomeOK}}, client, nil, nil)

	record, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: "text"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDegraded, record.AnalysisOutcome)
	assert.Equal(t, models.OutcomeDegraded, record.PlagiarismOutcome)
	assert.Equal(t, models.ConfidenceLow, placeholderPlagiarism().Confidence)
}

func TestAnalyzeClampsAndNormalises(t *testing.T) {
	client := &fakeLLM{replies: map[string]string{
		stepAnalysis:   `{"topic":"T","themes":"single theme"}`,
		stepPlagiarism: `{"plagiarism_score": "150%", "confidence": "certain"}`,
	}}
	svc := NewAnalysisService(newMockAnalysisRepo(), &stubSearcher{result: SourceResult{Outcome: models.OutcomeOK}}, client, nil, nil)

	record, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: "text"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, record.PlagiarismScore)
	assert.Equal(t, 0.5, record.ConfidenceScore)
	assert.Equal(t, models.StringArray{"single theme"}, record.Themes)
	assert.Equal(t, defaultSuggestions, record.ResearchSuggestions)
	assert.Equal(t, defaultCitation, record.CitationRecommendations)
	assert.Equal(t, models.OutcomeOK, record.AnalysisOutcome)
}

func TestAnalyzeNegativeScoreClampedToZero(t *testing.T) {
	result, err := parsePlagiarism(`{"plagiarism_score": -4, "confidence": "medium"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
}

func TestAnalyzeRepositoryFailurePropagates(t *testing.T) {
	repo := newMockAnalysisRepo()
	repo.createErr = errors.New("disk full")
	svc := NewAnalysisService(repo, &stubSearcher{result: SourceResult{Outcome: models.OutcomeOK}}, nil, nil, nil)

	_, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: "text"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestSourceContextWithoutYear(t *testing.T) {
	out := sourceContext([]models.SourceReference{{Title: "T", Authors: "A", Abstract: "short"}})
	assert.Equal(t, "Source 1: T by A (n.d.)\nAbstract: short...", out)
}

func TestAnalyzeRejectsRepliesWithoutExpectedFields(t *testing.T) {
	for _, reply := range []string{`null`, `{}`, `{"unexpected":"shape"}`, `[1,2]`, `{"topic":null}`} {
		client := &fakeLLM{replies: map[string]string{stepAnalysis: reply, stepPlagiarism: reply}}
		svc := NewAnalysisService(newMockAnalysisRepo(), &stubSearcher{result: SourceResult{Outcome: models.OutcomeOK}}, client, nil, nil)

		record, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: "text"})
		require.NoError(t, err, reply)
		assert.Equal(t, models.OutcomeDegraded, record.AnalysisOutcome, reply)
		assert.Equal(t, models.OutcomeDegraded, record.PlagiarismOutcome, reply)
		assert.Equal(t, placeholderAnalysis().Topic, record.Topic, reply)
		assert.Equal(t, 0.0, record.PlagiarismScore, reply)
		assert.True(t, record.Degraded(), reply)
	}
}

func TestParsePlagiarismRequiresScore(t *testing.T) {
	_, err := parsePlagiarism(`{"flagged_sections": [], "confidence": "high"}`)
	assert.ErrorIs(t, err, errUnexpectedReply)

	_, err = parsePlagiarism(`{"plagiarism_score": "unknown"}`)
	assert.ErrorIs(t, err, errUnexpectedReply)

	result, err := parsePlagiarism(`{"plagiarism_score": 0}`)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeOK, result.Outcome)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
}

func TestParseRepliesDropNUL(t *testing.T) {
	analysis, err := parseAnalysis(`{"topic":"to\u0000pic","themes":["a\u0000b"]}`)
	require.NoError(t, err)
	assert.Equal(t, "topic", analysis.Topic)
	assert.Equal(t, []string{"ab"}, analysis.Themes)

	plagiarism, err := parsePlagiarism(`{"plagiarism_score": 10, "flagged_sections": [{"text":"co\u0000py","source":"s\u00001","similarity":5}]}`)
	require.NoError(t, err)
	require.Len(t, plagiarism.Flagged, 1)
	assert.Equal(t, "copy", plagiarism.Flagged[0].Text)
	assert.Equal(t, "s1", plagiarism.Flagged[0].Source)
}

func TestAnalyzePromptsCarryLeadingCharacters(t *testing.T) {
	client := &fakeLLM{replies: map[string]string{
		stepAnalysis:   goodAnalysis,
		stepPlagiarism: `{"plagiarism_score": 5, "confidence": "low"}`,
	}}
	svc := NewAnalysisService(newMockAnalysisRepo(), &stubSearcher{result: SourceResult{Sources: fourSources(), Outcome: models.OutcomeOK}}, client, nil, nil)

	text := strings.Repeat("α", 1500) + strings.Repeat("β", 500) + strings.Repeat("γ", 3000)
	_, err := svc.Analyze(context.Background(), &models.Submission{ID: "sub1", OriginalText: text})
	require.NoError(t, err)
	require.Len(t, client.requests, 2)

	analysisPrompt := client.requests[0].Prompt
	assert.Contains(t, analysisPrompt, strings.Repeat("α", 1500)+strings.Repeat("β", 500)+"\n")
	assert.NotContains(t, analysisPrompt, "γ")

	plagiarismPrompt := client.requests[1].Prompt
	assert.Contains(t, plagiarismPrompt, strings.Repeat("α", 1500)+"\n")
	assert.NotContains(t, plagiarismPrompt, "β")
	assert.NotContains(t, plagiarismPrompt, "γ")
}
