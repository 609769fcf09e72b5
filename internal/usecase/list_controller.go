package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/openfoodfacts"
	"go.uber.org/zap"
)

// ListState is the lifecycle state of the product list
type ListState int

const (
	StateIdle ListState = iota
	StateLoadingInitial
	StateReady
	StateLoadingMore
	StateExhausted
	StateError
)

func (s ListState) String() string {
	switch s {
	case StateLoadingInitial:
		return "loading_initial"
	case StateReady:
		return "ready"
	case StateLoadingMore:
		return "loading_more"
	case StateExhausted:
		return "exhausted"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText renders the state by name in JSON views
func (s ListState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Loading reports whether a fetch is in flight
func (s ListState) Loading() bool {
	return s == StateLoadingInitial || s == StateLoadingMore
}

const (
	endOfListMessage   = "You've reached the end of the list."
	loadFailureMessage = "Unable to load products. Try another category."
)

// ListView is an immutable snapshot of the controller for rendering
type ListView struct {
	Items   []domain.FoodItem `json:"items"`
	State   ListState         `json:"state"`
	Mode    domain.QueryMode  `json:"mode"`
	Page    int               `json:"page"`
	HasMore bool              `json:"hasMore"`
	Sort    domain.SortSpec   `json:"sort"`
	Message string            `json:"message,omitempty"`
}

// ListController owns the product collection and its loading lifecycle.
// The mutex is never held across a fetch. Each mode change starts a new
// generation and responses from older generations are dropped on arrival.
type ListController struct {
	source domain.FoodSource
	logger *zap.Logger

	mu          sync.Mutex
	items       []domain.FoodItem
	seen        map[string]struct{}
	state       ListState
	mode        domain.QueryMode
	page        int
	hasMore     bool
	generation  uint64
	sort        domain.SortSpec
	sortPending bool
	lastErr     error
}

// NewListController creates an idle controller reading from source
func NewListController(source domain.FoodSource, logger *zap.Logger) *ListController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListController{
		source: source,
		logger: logger.Named("list"),
		seen:   make(map[string]struct{}),
		state:  StateIdle,
		mode:   domain.BrowseAll(),
		page:   1,
		sort:   domain.DefaultSort(),
	}
}

// SetMode switches the query mode, clears the collection and loads page 1.
// Failures become display states and are never returned.
func (c *ListController) SetMode(ctx context.Context, mode domain.QueryMode) {
	c.loadInitial(ctx, c.switchMode(mode), mode)
}

// switchMode resets the collection for mode and returns the new generation.
// Once it returns, any response of an earlier mode is stale.
func (c *ListController) switchMode(mode domain.QueryMode) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.mode = mode
	c.page = 1
	c.items = nil
	c.seen = make(map[string]struct{})
	c.hasMore = true
	c.lastErr = nil
	c.state = StateLoadingInitial
	return c.generation
}

func (c *ListController) loadInitial(ctx context.Context, gen uint64, mode domain.QueryMode) {
	c.logger.Debug("loading first page",
		zap.Stringer("kind", mode.Kind),
		zap.String("value", mode.Value),
		zap.Uint64("generation", gen))

	page, err := c.source.ListProducts(ctx, 1, mode)
	c.applyInitial(gen, page, err)
}

func (c *ListController) applyInitial(gen uint64, page *domain.ProductPage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale first page", zap.Uint64("generation", gen))
		return
	}

	if err == nil && page == nil {
		err = fmt.Errorf("%w: no page", domain.ErrMalformedResponse)
	}
	if err != nil {
		c.logger.Warn("initial load failed", zap.Error(err))
		c.settleEmpty(err)
		return
	}

	items := openfoodfacts.NormalizeProducts(page.Products)
	if len(items) == 0 {
		c.settleEmpty(domain.ErrNoResults)
		return
	}

	c.append(items)
	c.page = 2
	c.state = StateReady
	c.settleSort()
}

func (c *ListController) settleEmpty(err error) {
	c.items = nil
	c.hasMore = false
	c.lastErr = err
	c.state = StateError
	c.sortPending = false
}

// LoadMore fetches the next page when the list is ready and more items are
// available. It reports whether a fetch was issued.
func (c *ListController) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != StateReady || !c.hasMore {
		c.mu.Unlock()
		return false
	}
	gen := c.generation
	pageNum := c.page
	mode := c.mode
	c.state = StateLoadingMore
	c.mu.Unlock()

	c.logger.Debug("loading next page",
		zap.Stringer("kind", mode.Kind),
		zap.Int("page", pageNum))

	page, err := c.source.ListProducts(ctx, pageNum, mode)
	c.applyMore(gen, page, err)
	return true
}

func (c *ListController) applyMore(gen uint64, page *domain.ProductPage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale page", zap.Uint64("generation", gen))
		return
	}

	if err == nil && page == nil {
		err = fmt.Errorf("%w: no page", domain.ErrMalformedResponse)
	}
	if err != nil {
		// Keep what is loaded and stop paging quietly
		c.logger.Warn("page load failed", zap.Int("page", c.page), zap.Error(err))
		c.hasMore = false
		c.state = StateExhausted
		c.settleSort()
		return
	}

	items := openfoodfacts.NormalizeProducts(page.Products)
	if len(items) == 0 {
		c.hasMore = false
		c.state = StateExhausted
		c.settleSort()
		return
	}

	c.append(items)
	c.page++
	c.state = StateReady
	c.settleSort()
}

// append adds items whose code is not already in the collection
func (c *ListController) append(items []domain.FoodItem) {
	for _, item := range items {
		if _, dup := c.seen[item.Code]; dup {
			continue
		}
		c.seen[item.Code] = struct{}{}
		c.items = append(c.items, item)
	}
}

// CanLoadMore reports whether a sentinel event would issue a fetch
func (c *ListController) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady && c.hasMore
}

// SetSort changes the sort spec. The collection is reordered immediately
// when settled, otherwise once the running load finishes.
func (c *ListController) SetSort(spec domain.SortSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if spec == c.sort && !c.sortPending {
		return
	}
	c.sort = spec
	c.sortPending = true
	if !c.state.Loading() {
		c.settleSort()
	}
}

func (c *ListController) settleSort() {
	if !c.sortPending {
		return
	}
	SortItems(c.items, c.sort)
	c.sortPending = false
}

// Sort returns the active sort spec
func (c *ListController) Sort() domain.SortSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Mode returns the active query mode
func (c *ListController) Mode() domain.QueryMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Snapshot returns a copy of the current list state
func (c *ListController) Snapshot() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.FoodItem, len(c.items))
	copy(items, c.items)

	return ListView{
		Items:   items,
		State:   c.state,
		Mode:    c.mode,
		Page:    c.page,
		HasMore: c.hasMore,
		Sort:    c.sort,
		Message: c.message(),
	}
}

func (c *ListController) message() string {
	switch c.state {
	case StateError:
		if term := c.mode.SearchTerm(); term != "" && errors.Is(c.lastErr, domain.ErrNoResults) {
			return fmt.Sprintf("No results found for %q", term)
		}
		return loadFailureMessage
	case StateExhausted:
		if len(c.items) > 0 {
			return endOfListMessage
		}
	}
	return ""
}
