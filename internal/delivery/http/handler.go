package http

import (
	"errors"
	"net/http"

	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions *SessionManager
	catalog  *usecase.CategoryCatalog
	products *usecase.ProductService
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessions *SessionManager,
	catalog *usecase.CategoryCatalog,
	products *usecase.ProductService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
		products: products,
		logger:   logger.Named("http"),
	}
}

type selectCategoryRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}

type searchRequest struct {
	Term string `json:"term" binding:"required"`
}

type sortRequest struct {
	Field string `json:"field" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "forkandfind",
		"version": "1.0.0",
	})
}

// GetHome returns the homepage, restoring it on the first visit. The search
// query parameter is the initial search; on later visits a different term
// starts a new search.
func (h *Handler) GetHome(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.sessions.resolve(c)
	search := c.Query("search")

	restored := false
	s.start(func() {
		s.home.Init(ctx, search)
		restored = true
	})

	if !restored && search != "" && usecase.NormalizeSearchTerm(search) != s.home.View().SearchTerm {
		if err := s.home.Search(ctx, search); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, s.home.View())
}

// SelectCategory filters the homepage by category
func (h *Handler) SelectCategory(c *gin.Context) {
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.startedSession(c)
	if err := s.home.SelectCategory(c.Request.Context(), req.ID, req.Name); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.home.View())
}

// Search runs a text search on the homepage
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.startedSession(c)
	if err := s.home.Search(c.Request.Context(), req.Term); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.home.View())
}

// ShowAll clears category and search
func (h *Handler) ShowAll(c *gin.Context) {
	s := h.startedSession(c)
	s.home.ShowAll(c.Request.Context())
	c.JSON(http.StatusOK, s.home.View())
}

// ToggleSort toggles the list order for a field
func (h *Handler) ToggleSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, ok := domain.ParseSortField(req.Field)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field must be 'name' or 'nutrition'"})
		return
	}

	s := h.sessions.resolve(c)
	s.home.ToggleSort(field)
	c.JSON(http.StatusOK, s.home.View())
}

// SentinelVisible reports that the end-of-list marker scrolled into view
func (h *Handler) SentinelVisible(c *gin.Context) {
	s := h.sessions.resolve(c)
	s.sentinel.Enter(c.Request.Context())
	c.JSON(http.StatusOK, s.home.View())
}

// GetCategories returns the predefined and the auxiliary categories
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"predefinedCategories": usecase.PredefinedCategories(),
		"categories":           h.catalog.Load(c.Request.Context()),
	})
}

// GetProduct returns the detail view of one product
func (h *Handler) GetProduct(c *gin.Context) {
	detail, err := h.products.GetProduct(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// startedSession resolves the session and marks it started, so a later
// GET /home does not restore over an explicit choice.
func (h *Handler) startedSession(c *gin.Context) *session {
	s := h.sessions.resolve(c)
	s.start(func() {
		h.catalog.Load(c.Request.Context())
	})
	return s
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamFailure), errors.Is(err, domain.ErrMalformedResponse):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
