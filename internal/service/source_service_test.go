package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

type mockSourceRepo struct {
	ranked      []models.RankedSource
	sample      []models.AcademicSource
	searchErr   error
	sampleErr   error
	searchCalls int
	lastLimit   int
}

func (m *mockSourceRepo) Search(ctx context.Context, query string, limit int) ([]models.RankedSource, error) {
	m.searchCalls++
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.ranked) > limit {
		return m.ranked[:limit], nil
	}
	return m.ranked, nil
}

func (m *mockSourceRepo) Sample(ctx context.Context, limit int) ([]models.AcademicSource, error) {
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	return m.sample, nil
}

func sampleSource(id, title string) models.AcademicSource {
	year := 2017
	return models.AcademicSource{ID: id, Title: title, Authors: "Vaswani et al.", PublicationYear: &year, Abstract: "abstract " + title, SourceType: models.SourceTypePaper}
}

func TestSourceSearchRanked(t *testing.T) {
	repo := &mockSourceRepo{ranked: []models.RankedSource{
		{AcademicSource: sampleSource("s1", "Attention"), Rank: 0.9},
		{AcademicSource: sampleSource("s2", "Transformers"), Rank: 0.2},
	}}
	svc := NewSourceService(repo, nil, nil, zap.NewNop())

	res := svc.Search(context.Background(), "attention", 0)
	assert.Equal(t, models.OutcomeOK, res.Outcome)
	assert.Equal(t, DefaultTopK, repo.lastLimit)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "s1", res.Sources[0].ID)
	assert.Equal(t, 0.8, res.Sources[0].SimilarityScore)
	assert.Equal(t, 2017, *res.Sources[0].Year)
}

func TestSourceSearchCapsTopK(t *testing.T) {
	repo := &mockSourceRepo{}
	svc := NewSourceService(repo, nil, nil, nil)

	res := svc.Search(context.Background(), "x", 500)
	assert.Equal(t, MaxTopK, repo.lastLimit)
	assert.Empty(t, res.Sources)
	assert.Equal(t, models.OutcomeOK, res.Outcome)
}

func TestSourceSearchFallbackIsDegraded(t *testing.T) {
	repo := &mockSourceRepo{searchErr: errors.New("no text search"), sample: []models.AcademicSource{sampleSource("s9", "Sample")}}
	svc := NewSourceService(repo, nil, nil, nil)

	res := svc.Search(context.Background(), "attention", 3)
	assert.Equal(t, models.OutcomeDegraded, res.Outcome)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, 0.7, res.Sources[0].SimilarityScore)
}

func TestSourceSearchFallbackFailureIsEmpty(t *testing.T) {
	repo := &mockSourceRepo{searchErr: errors.New("down"), sampleErr: errors.New("down")}
	svc := NewSourceService(repo, nil, nil, nil)

	res := svc.Search(context.Background(), "attention", 3)
	assert.Equal(t, models.OutcomeDegraded, res.Outcome)
	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Sources)
}

func TestSourceSearchTruncatesAbstract(t *testing.T) {
	src := sampleSource("s1", "Long")
	src.Abstract = strings.Repeat("é", 800)
	svc := NewSourceService(&mockSourceRepo{ranked: []models.RankedSource{{AcademicSource: src}}}, nil, nil, nil)

	res := svc.Search(context.Background(), "long", 1)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, 500, len([]rune(res.Sources[0].Abstract)))
}

func TestSourceSearchDeterministic(t *testing.T) {
	repo := &mockSourceRepo{ranked: []models.RankedSource{
		{AcademicSource: sampleSource("s1", "A")},
		{AcademicSource: sampleSource("s2", "B")},
	}}
	svc := NewSourceService(repo, nil, nil, nil)

	first := svc.Search(context.Background(), "q", 2)
	second := svc.Search(context.Background(), "q", 2)
	assert.Equal(t, first, second)
}

func TestSourceSearchUsesCache(t *testing.T) {
	repo := &mockSourceRepo{ranked: []models.RankedSource{{AcademicSource: sampleSource("s1", "A")}}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewSourceService(repo, cache, nil, nil)

	first := svc.Search(context.Background(), "q", 2)
	second := svc.Search(context.Background(), "q", 2)
	assert.Equal(t, 1, repo.searchCalls)
	assert.Equal(t, first.Sources[0].ID, second.Sources[0].ID)

	require.NoError(t, svc.InvalidateCache(context.Background()))
	svc.Search(context.Background(), "q", 2)
	assert.Equal(t, 2, repo.searchCalls)
}

func TestSourceSearchDoesNotCacheDegraded(t *testing.T) {
	repo := &mockSourceRepo{searchErr: errors.New("down")}
	cacheRepo := newMemoryCacheRepo()
	svc := NewSourceService(repo, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)

	svc.Search(context.Background(), "q", 2)
	assert.Zero(t, cacheRepo.setCalls)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "éé", truncateRunes("ééé", 2))
}
