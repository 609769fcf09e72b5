package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FoodSource defines the interface for reading the Open Food Facts API
type FoodSource interface {
	ListProducts(ctx context.Context, page int, mode QueryMode) (*ProductPage, error)
	GetProduct(ctx context.Context, code string) (*RawProduct, error)
	ListCategories(ctx context.Context) (*Taxonomy, error)
}

// PreferenceStore is a small key-value store that survives reloads.
// Get returns ErrPreferenceNotFound for keys that were never set or were cleared.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}
