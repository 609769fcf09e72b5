package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/forkandfind/client/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Preference keys of the last selected category
const (
	PrefSelectedCategory     = "selectedCategory"
	PrefSelectedCategoryName = "selectedCategoryName"
)

// HomepageView is everything the homepage renders
type HomepageView struct {
	List                 ListView                    `json:"list"`
	SelectedCategory     string                      `json:"selectedCategory,omitempty"`
	SelectedCategoryName string                      `json:"selectedCategoryName,omitempty"`
	SearchTerm           string                      `json:"searchTerm,omitempty"`
	Predefined           []domain.PredefinedCategory `json:"predefinedCategories"`
	Categories           []domain.CategoryOption     `json:"categories"`
}

// Homepage ties the product list to the category pickers, the search box and
// the stored category preference. Category and search are never active at
// the same time because both are expressed as the list's single query mode.
type Homepage struct {
	list       *ListController
	catalog    *CategoryCatalog
	prefs      domain.PreferenceStore
	predefined []domain.PredefinedCategory
	logger     *zap.Logger

	// switchMu orders mode changes from the preference write to dispatch
	switchMu sync.Mutex

	mu           sync.Mutex
	categoryName string
}

// NewHomepage creates a homepage whose scroll trigger listens on sentinel
func NewHomepage(
	source domain.FoodSource,
	catalog *CategoryCatalog,
	prefs domain.PreferenceStore,
	sentinel ViewportSentinel,
	logger *zap.Logger,
) *Homepage {
	if logger == nil {
		logger = zap.NewNop()
	}

	list := NewListController(source, logger)
	if sentinel != nil {
		NewScrollTrigger(list).Attach(sentinel)
	}

	return &Homepage{
		list:       list,
		catalog:    catalog,
		prefs:      prefs,
		predefined: PredefinedCategories(),
		logger:     logger.Named("homepage"),
	}
}

// List exposes the underlying list controller
func (h *Homepage) List() *ListController {
	return h.list
}

// Init restores the homepage on first display. A non-empty search term
// wins over a stored category; with neither the full listing is shown. The
// category catalog loads alongside the first page.
func (h *Homepage) Init(ctx context.Context, initialSearch string) {
	var g errgroup.Group

	g.Go(func() error {
		h.catalog.Load(ctx)
		return nil
	})

	g.Go(func() error {
		h.switchTo(ctx, func() (domain.QueryMode, string) {
			if term := NormalizeSearchTerm(initialSearch); term != "" {
				h.clearStored(ctx)
				return domain.TextSearch(term), ""
			}

			id, name, ok := h.storedCategory(ctx)
			if !ok {
				return domain.BrowseAll(), ""
			}
			h.logger.Debug("restoring stored category", zap.String("category", id))
			return domain.CategoryFilter(id), name
		})
		return nil
	})

	_ = g.Wait() // both loaders report through state, never errors
}

// switchTo runs choose and dispatches the mode it returns under switchMu, so
// the stored category always belongs to the last dispatched mode. The first
// page is fetched after the lock is released.
func (h *Homepage) switchTo(ctx context.Context, choose func() (domain.QueryMode, string)) {
	h.switchMu.Lock()
	mode, name := choose()

	h.mu.Lock()
	h.categoryName = name
	h.mu.Unlock()

	gen := h.list.switchMode(mode)
	h.switchMu.Unlock()

	h.list.loadInitial(ctx, gen, mode)
}

func (h *Homepage) storedCategory(ctx context.Context) (id, name string, ok bool) {
	id, err := h.prefs.Get(ctx, PrefSelectedCategory)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferenceNotFound) {
			h.logger.Warn("failed to read stored category", zap.Error(err))
		}
		return "", "", false
	}
	if strings.TrimSpace(id) == "" {
		return "", "", false
	}

	name, err = h.prefs.Get(ctx, PrefSelectedCategoryName)
	if err != nil || name == "" {
		name = CleanCategoryName(id)
	}
	return id, name, true
}

// SelectCategory filters the list by category, replacing any search
func (h *Homepage) SelectCategory(ctx context.Context, id, name string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidRequest
	}

	name = CleanCategoryName(name)
	if name == "" {
		name = CleanCategoryName(id)
	}

	h.switchTo(ctx, func() (domain.QueryMode, string) {
		if err := h.prefs.Set(ctx, PrefSelectedCategory, id); err != nil {
			h.logger.Warn("failed to store category", zap.Error(err))
		}
		if err := h.prefs.Set(ctx, PrefSelectedCategoryName, name); err != nil {
			h.logger.Warn("failed to store category name", zap.Error(err))
		}
		return domain.CategoryFilter(id), name
	})
	return nil
}

// Search lists the products matching term, replacing any category
func (h *Homepage) Search(ctx context.Context, term string) error {
	term = NormalizeSearchTerm(term)
	if term == "" {
		return domain.ErrInvalidRequest
	}

	h.switchTo(ctx, func() (domain.QueryMode, string) {
		h.clearStored(ctx)
		return domain.TextSearch(term), ""
	})
	return nil
}

// ShowAll drops any category or search and lists every product
func (h *Homepage) ShowAll(ctx context.Context) {
	h.switchTo(ctx, func() (domain.QueryMode, string) {
		h.clearStored(ctx)
		return domain.BrowseAll(), ""
	})
}

func (h *Homepage) clearStored(ctx context.Context) {
	for _, key := range []string{PrefSelectedCategory, PrefSelectedCategoryName} {
		if err := h.prefs.Clear(ctx, key); err != nil {
			h.logger.Warn("failed to clear stored category", zap.String("key", key), zap.Error(err))
		}
	}
}

// ToggleSort flips the order when field is already active, otherwise sorts
// ascending by field.
func (h *Homepage) ToggleSort(field domain.SortField) domain.SortSpec {
	h.mu.Lock()
	defer h.mu.Unlock()

	spec := h.list.Sort().Toggle(field)
	h.list.SetSort(spec)
	return spec
}

// View returns the current homepage snapshot
func (h *Homepage) View() HomepageView {
	list := h.list.Snapshot()

	view := HomepageView{
		List:             list,
		SelectedCategory: list.Mode.CategoryID(),
		SearchTerm:       list.Mode.SearchTerm(),
		Predefined:       h.predefined,
		Categories:       h.catalog.Options(),
	}
	if view.SelectedCategory != "" {
		h.mu.Lock()
		view.SelectedCategoryName = h.categoryName
		h.mu.Unlock()
	}
	return view
}
