package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/forkandfind/client/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string]interface{}
	setError error
	gets     int
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

type listCall struct {
	Page int
	Mode domain.QueryMode
}

// MockFoodSource is a mock implementation of domain.FoodSource.
// Pages are keyed by mode and page number; a missing page is an empty one.
type MockFoodSource struct {
	mu         sync.Mutex
	pages      map[domain.QueryMode]map[int][]domain.RawProduct
	listErrors map[int]error
	listCalls  []listCall
	onList     func(ctx context.Context, page int, mode domain.QueryMode)

	taxonomy      *domain.Taxonomy
	taxonomyError error
	taxonomyCalls int

	product      *domain.RawProduct
	productError error
	productCalls int
	onProduct    func()
}

func NewMockFoodSource() *MockFoodSource {
	return &MockFoodSource{
		pages:      make(map[domain.QueryMode]map[int][]domain.RawProduct),
		listErrors: make(map[int]error),
		taxonomy:   &domain.Taxonomy{},
	}
}

func (m *MockFoodSource) setPage(mode domain.QueryMode, page int, products []domain.RawProduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[mode] == nil {
		m.pages[mode] = make(map[int][]domain.RawProduct)
	}
	m.pages[mode][page] = products
}

func (m *MockFoodSource) ListProducts(ctx context.Context, page int, mode domain.QueryMode) (*domain.ProductPage, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, listCall{Page: page, Mode: mode})
	hook := m.onList
	err := m.listErrors[page]
	products := m.pages[mode][page]
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, page, mode)
	}
	if err != nil {
		return nil, err
	}
	return &domain.ProductPage{Products: products, Count: len(products), Page: page}, nil
}

func (m *MockFoodSource) GetProduct(ctx context.Context, code string) (*domain.RawProduct, error) {
	m.mu.Lock()
	m.productCalls++
	hook := m.onProduct
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if m.productError != nil {
		return nil, m.productError
	}
	return m.product, nil
}

func (m *MockFoodSource) ListCategories(ctx context.Context) (*domain.Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taxonomyCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.taxonomyError != nil {
		return nil, m.taxonomyError
	}
	return m.taxonomy, nil
}

func (m *MockFoodSource) calls() []listCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listCall, len(m.listCalls))
	copy(out, m.listCalls)
	return out
}

// rawProducts builds n valid records with codes prefix-00, prefix-01, ...
func rawProducts(prefix string, n int) []domain.RawProduct {
	out := make([]domain.RawProduct, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.RawProduct{
			Code:            domain.FlexString(fmt.Sprintf("%s-%02d", prefix, i)),
			ProductName:     fmt.Sprintf("%s product %02d", prefix, i),
			ImageURL:        fmt.Sprintf("https://images.example/%s/%d.jpg", prefix, i),
			NutritionGrades: "b",
		})
	}
	return out
}

// MockPreferenceStore is a preference store whose writes can fail
type MockPreferenceStore struct {
	mu       sync.Mutex
	data     map[string]string
	setError error

	// Set of blockKey signals blocked and waits for release
	blockKey    string
	blocked     chan struct{}
	release     chan struct{}
	blockedOnce sync.Once
}

func NewMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{data: make(map[string]string)}
}

func (m *MockPreferenceStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return v, nil
}

// blockSet makes the next writes of key wait until the returned func is called
func (m *MockPreferenceStore) blockSet(key string) (blocked <-chan struct{}, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockKey = key
	m.blocked = make(chan struct{})
	m.release = make(chan struct{})
	return m.blocked, func() { close(m.release) }
}

func (m *MockPreferenceStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	if key == m.blockKey && m.release != nil {
		blocked, release := m.blocked, m.release
		m.mu.Unlock()
		m.blockedOnce.Do(func() { close(blocked) })
		<-release
		m.mu.Lock()
	}
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockPreferenceStore) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
