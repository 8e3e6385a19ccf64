package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

const (
	// DefaultTopK is used when the caller does not ask for a result count.
	DefaultTopK = 5
	// MaxTopK caps the number of sources returned by one search.
	MaxTopK = 50

	primarySimilarity  = 0.8
	fallbackSimilarity = 0.7
	maxAbstractChars   = 500

	sourceCacheNamespace = "sources"
)

type sourceRepository interface {
	Search(ctx context.Context, query string, limit int) ([]models.RankedSource, error)
	Sample(ctx context.Context, limit int) ([]models.AcademicSource, error)
}

// SourceResult is the outcome of a catalogue search. Degraded results came from the unranked fallback.
type SourceResult struct {
	Sources []models.SourceReference `json:"sources"`
	Outcome models.Outcome           `json:"outcome"`
}

// SourceService finds catalogue entries relevant to a piece of text.
type SourceService struct {
	repo    sourceRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSourceService constructs a SourceService. cache may be nil.
func NewSourceService(repo sourceRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Search returns up to topK sources ranked by relevance. It never fails: when ranked search is unavailable
// an unranked sample is returned with a lower similarity score, and when that fails too the result is empty.
func (s *SourceService) Search(ctx context.Context, query string, topK int) SourceResult {
	topK = normaliseTopK(topK)
	query = strings.TrimSpace(query)

	cacheKey := CacheKey(sourceCacheNamespace, query, strconv.Itoa(topK))
	var cached []models.SourceReference
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return SourceResult{Sources: cached, Outcome: models.OutcomeOK}
	}

	start := time.Now()
	ranked, err := s.repo.Search(ctx, query, topK)
	s.metrics.ObserveDBQuery("sources_search", time.Since(start))
	if err == nil {
		refs := make([]models.SourceReference, 0, len(ranked))
		for i := range ranked {
			refs = append(refs, toReference(ranked[i].AcademicSource, primarySimilarity))
		}
		_ = s.cache.Set(ctx, cacheKey, refs, 0)
		return SourceResult{Sources: refs, Outcome: models.OutcomeOK}
	}

	s.logger.Warn("ranked source search failed, using unranked sample", zap.Error(err))
	sample, err := s.repo.Sample(ctx, topK)
	if err != nil {
		s.logger.Warn("source sample failed", zap.Error(err))
		return SourceResult{Sources: []models.SourceReference{}, Outcome: models.OutcomeDegraded}
	}
	refs := make([]models.SourceReference, 0, len(sample))
	for i := range sample {
		refs = append(refs, toReference(sample[i], fallbackSimilarity))
	}
	return SourceResult{Sources: refs, Outcome: models.OutcomeDegraded}
}

// InvalidateCache drops every cached search, used after the catalogue changes.
func (s *SourceService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, sourceCacheNamespace+":*")
}

func normaliseTopK(topK int) int {
	switch {
	case topK <= 0:
		return DefaultTopK
	case topK > MaxTopK:
		return MaxTopK
	default:
		return topK
	}
}

func toReference(src models.AcademicSource, similarity float64) models.SourceReference {
	return models.SourceReference{
		ID:              src.ID,
		Title:           src.Title,
		Authors:         src.Authors,
		Year:            src.PublicationYear,
		Abstract:        truncateRunes(src.Abstract, maxAbstractChars),
		Type:            src.SourceType,
		SimilarityScore: similarity,
	}
}
