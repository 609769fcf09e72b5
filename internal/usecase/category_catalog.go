package usecase

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/forkandfind/client/internal/domain"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultCatalogMinProducts = 10000
	DefaultCatalogLimit       = 20
)

var (
	localePrefixRegex = regexp.MustCompile(`^[a-z]{2,3}:`)
	separatorRegex    = regexp.MustCompile(`[-_\s]+`)
)

// CatalogConfig holds the ranking thresholds of the auxiliary category list
type CatalogConfig struct {
	MinProducts int
	Limit       int
}

// CategoryCatalog loads the auxiliary categories once per process
type CategoryCatalog struct {
	source     domain.FoodSource
	predefined []domain.PredefinedCategory
	config     CatalogConfig
	logger     *zap.Logger

	once    sync.Once
	mu      sync.RWMutex
	options []domain.CategoryOption
}

// NewCategoryCatalog creates a catalog that excludes the predefined categories
func NewCategoryCatalog(
	source domain.FoodSource,
	predefined []domain.PredefinedCategory,
	config CatalogConfig,
	logger *zap.Logger,
) *CategoryCatalog {
	if config.MinProducts <= 0 {
		config.MinProducts = DefaultCatalogMinProducts
	}
	if config.Limit <= 0 {
		config.Limit = DefaultCatalogLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryCatalog{
		source:     source,
		predefined: predefined,
		config:     config,
		logger:     logger.Named("catalog"),
	}
}

// Load fetches and ranks the taxonomy on the first call. Later calls return
// the same list. A failed fetch leaves the list empty for good. The fetch is
// shared by every caller, so it does not stop when the first caller's
// context is cancelled.
func (c *CategoryCatalog) Load(ctx context.Context) []domain.CategoryOption {
	c.once.Do(func() {
		taxonomy, err := c.source.ListCategories(context.WithoutCancel(ctx))
		if err != nil {
			c.logger.Warn("category taxonomy unavailable", zap.Error(err))
			return
		}

		options := RankCategories(taxonomy.Tags, c.predefined, c.config.MinProducts, c.config.Limit)
		c.logger.Debug("category catalog loaded",
			zap.Int("taxonomy", len(taxonomy.Tags)),
			zap.Int("options", len(options)))

		c.mu.Lock()
		c.options = options
		c.mu.Unlock()
	})
	return c.Options()
}

// Options returns the loaded categories, empty until Load completes
func (c *CategoryCatalog) Options() []domain.CategoryOption {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.options)
}

// RankCategories drops predefined and small categories, orders the rest by
// product count descending and keeps the first limit entries.
func RankCategories(
	tags []domain.TaxonomyTag,
	predefined []domain.PredefinedCategory,
	minProducts, limit int,
) []domain.CategoryOption {
	excluded := make(map[string]struct{}, len(predefined))
	for _, p := range predefined {
		excluded[strings.ToLower(p.Name)] = struct{}{}
	}

	candidates := lo.Filter(tags, func(tag domain.TaxonomyTag, _ int) bool {
		if tag.Products <= minProducts {
			return false
		}
		name := strings.ToLower(CleanCategoryName(displaySource(tag)))
		if _, skip := excluded[name]; skip {
			return false
		}
		_, skip := excluded[strings.ToLower(CleanCategoryName(tag.ID))]
		return !skip
	})

	slices.SortStableFunc(candidates, func(a, b domain.TaxonomyTag) int {
		return b.Products - a.Products
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return lo.Map(candidates, func(tag domain.TaxonomyTag, _ int) domain.CategoryOption {
		return domain.CategoryOption{
			ID:           tag.ID,
			DisplayName:  CleanCategoryName(displaySource(tag)),
			ProductCount: tag.Products,
		}
	})
}

func displaySource(tag domain.TaxonomyTag) string {
	if strings.TrimSpace(tag.Name) != "" {
		return tag.Name
	}
	return tag.ID
}

// CleanCategoryName turns a taxonomy tag like "en:plant-based-foods" into
// "Plant Based Foods".
func CleanCategoryName(raw string) string {
	name := localePrefixRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	name = strings.TrimSpace(separatorRegex.ReplaceAllString(name, " "))
	// Casers keep state, so one per call
	return cases.Title(language.English).String(name)
}
