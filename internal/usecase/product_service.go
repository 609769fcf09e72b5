package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/openfoodfacts"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultProductCacheTTL is how long a product detail stays cached
const DefaultProductCacheTTL = time.Hour

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
}

// ProductService looks up single products for the detail view
type ProductService struct {
	cache    domain.CacheRepository
	source   domain.FoodSource
	cacheTTL time.Duration
	logger   *zap.Logger
	group    singleflight.Group
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	cache domain.CacheRepository,
	source domain.FoodSource,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultProductCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProductService{
		cache:    cache,
		source:   source,
		cacheTTL: cacheTTL,
		logger:   logger.Named("product"),
	}
}

// GetProduct returns the detail view of a product.
// Flow: check cache -> fetch upstream (deduplicated) -> map -> cache -> return
func (s *ProductService) GetProduct(ctx context.Context, code string) (*domain.ProductDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(code)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if detail, ok := cached.(*domain.ProductDetail); ok {
			s.logger.Debug("product served from cache", zap.String("code", code))
			return detail, nil
		}
	}

	v, err, shared := s.group.Do(cacheKey, func() (interface{}, error) {
		raw, err := s.source.GetProduct(ctx, code)
		if err != nil {
			return nil, err
		}

		detail := openfoodfacts.MapProductDetail(raw)
		if err := s.cache.Set(ctx, cacheKey, detail, s.cacheTTL); err != nil {
			// Log but don't fail on cache errors
			s.logger.Warn("failed to cache product", zap.String("code", code), zap.Error(err))
		}
		return detail, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", code, err)
	}
	if shared {
		s.logger.Debug("product lookup shared", zap.String("code", code))
	}

	return v.(*domain.ProductDetail), nil
}

func (s *ProductService) generateCacheKey(code string) string {
	return "product:" + code
}
