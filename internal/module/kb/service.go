package kb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Remote is the upstream knowledge base contract. Search responses are
// normalized into SearchResults at the adapter boundary; the service
// never sees the upstream's versioned envelope shapes.
type Remote interface {
	SearchArticles(ctx context.Context, query string) (*SearchResults, error)
	FetchArticle(ctx context.Context, articleID int64) (*Article, error)
}

// Cache is the tiered store surface the service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ServiceConfig holds knowledge base service settings.
type ServiceConfig struct {
	MinQueryLength int
	SearchTTL      time.Duration
	ArticleTTL     time.Duration
}

// Service is the knowledge base data-access façade.
type Service struct {
	cache  Cache
	remote Remote
	config ServiceConfig
	logger *zap.Logger

	group singleflight.Group
}

// NewService creates a new knowledge base service.
func NewService(cache Cache, remote Remote, cfg ServiceConfig, logger *zap.Logger) *Service {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:  cache,
		remote: remote,
		config: cfg,
		logger: logger,
	}
}

// Search runs a knowledge base search, serving cached result bundles
// for repeated queries. The length check runs before cache and
// upstream alike, against the normalized query.
func (s *Service) Search(ctx context.Context, query string) (*SearchResults, error) {
	normalized := NormalizeQuery(query)
	if len(normalized) < s.config.MinQueryLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrQueryTooShort, s.config.MinQueryLength)
	}

	key := SearchKey(normalized)

	var cached SearchResults
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		results, err := s.remote.SearchArticles(ctx, normalized)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, key, results, s.config.SearchTTL); err != nil {
			s.logger.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		} else {
			s.logger.Debug("cached search results",
				zap.String("key", key),
				zap.Duration("ttl", s.config.SearchTTL),
				zap.Int("results", len(results.Results)),
			)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*SearchResults), nil
}

// Article returns a single knowledge base article, cache-first.
func (s *Service) Article(ctx context.Context, articleID int64) (*Article, error) {
	if articleID <= 0 {
		return nil, ErrInvalidArticleID
	}

	key := ArticleKey(articleID)

	var cached Article
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		article, err := s.remote.FetchArticle(ctx, articleID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrArticleNotFound, articleID)
			}
			return nil, err
		}

		if err := s.cache.Set(ctx, key, article, s.config.ArticleTTL); err != nil {
			s.logger.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		}
		return article, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Article), nil
}
