package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/forkandfind/client/config"
	"github.com/forkandfind/client/internal/domain"
	"github.com/forkandfind/client/internal/infrastructure/cache"
	"github.com/forkandfind/client/internal/infrastructure/openfoodfacts"
	"github.com/forkandfind/client/internal/infrastructure/store"
	"github.com/forkandfind/client/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

var fruitNames = []string{"Banana", "Apple", "Cherry"}

func writeProducts(w http.ResponseWriter, prefix string, names []string) {
	products := make([]map[string]any, 0, len(names))
	for i, name := range names {
		products = append(products, map[string]any{
			"code":             fmt.Sprintf("%s-%d", prefix, i),
			"product_name":     name,
			"image_url":        fmt.Sprintf("https://images.example/%s/%d.jpg", prefix, i),
			"nutrition_grades": string(rune('a' + i)),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    len(names),
		"page":     1,
		"products": products,
	})
}

// newUpstream fakes the Open Food Facts endpoints the client calls
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v2/search.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeProducts(w, "all", fruitNames)
			return
		}
		writeProducts(w, "all", nil)
	})

	mux.HandleFunc("/facets/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facets/categories/snacks.json" {
			writeProducts(w, "other", nil)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			writeProducts(w, "snack", []string{"Pretzels", "Crackers"})
		case "2":
			writeProducts(w, "snack-p2", []string{"Popcorn"})
		default:
			writeProducts(w, "snack", nil)
		}
	})

	mux.HandleFunc("/cgi/search.pl", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_terms") == "milk" {
			writeProducts(w, "milk", []string{"Whole Milk"})
			return
		}
		writeProducts(w, "search", nil)
	})

	mux.HandleFunc("/api/v0/product/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v0/product/"), ".json")
		switch code {
		case "3017620422003":
			_, _ = w.Write([]byte(`{"status":1,"product":{"code":"3017620422003","product_name":"Nutella",` +
				`"nutriscore_grade":"e","ingredients_text":"Sugar, palm_oil","labels_tags":["en:vegetarian"]}}`))
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
		}
	})

	mux.HandleFunc("/categories.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":4,"tags":[` +
			`{"id":"en:snacks","name":"Snacks","products":50000},` +
			`{"id":"en:dairies","name":"Dairies","products":90000},` +
			`{"id":"en:beverages","name":"Beverages","products":80000},` +
			`{"id":"en:tiny","name":"Tiny","products":10}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type testEnv struct {
	router *gin.Engine
	prefs  *store.MemoryStore
}

// setupTestRouter wires the full stack against a fake upstream
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	upstream := newUpstream(t)
	client := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           upstream.URL,
		RequestsPerMinute: 60000,
		Burst:             1000,
		HTTPClient:        upstream.Client(),
	}, nil)

	memCache := cache.NewMemoryCache()
	t.Cleanup(memCache.Close)
	prefs := store.NewMemoryStore()

	catalog := usecase.NewCategoryCatalog(client, usecase.PredefinedCategories(), usecase.CatalogConfig{}, nil)
	sessions := NewSessionManager(memCache, prefs,
		func(p domain.PreferenceStore, s usecase.ViewportSentinel) *usecase.Homepage {
			return usecase.NewHomepage(client, catalog, p, s, nil)
		}, time.Hour, nil)
	products := usecase.NewProductService(memCache, client, usecase.ProductServiceConfig{}, nil)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}

	return &testEnv{
		router: SetupRouter(cfg, NewHandler(sessions, catalog, products, nil), nil),
		prefs:  prefs,
	}
}

// browser replays the session cookie like a real browser would
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func (e *testEnv) newBrowser(t *testing.T) *browser {
	return &browser{t: t, router: e.router}
}

func (b *browser) do(method, path, body string) *httptest.ResponseRecorder {
	b.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return w
}

func (b *browser) sessionID() string {
	for _, c := range b.cookies {
		if c.Name == SessionCookie {
			return c.Value
		}
	}
	return ""
}

type homeResponse struct {
	List struct {
		Items []struct {
			Code           string `json:"code"`
			Name           string `json:"productName"`
			NutritionGrade string `json:"nutritionGrade"`
		} `json:"items"`
		State string `json:"state"`
		Mode  struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"mode"`
		Page    int  `json:"page"`
		HasMore bool `json:"hasMore"`
		Sort    struct {
			Field string `json:"field"`
			Order string `json:"order"`
		} `json:"sort"`
		Message string `json:"message"`
	} `json:"list"`
	SelectedCategory     string `json:"selectedCategory"`
	SelectedCategoryName string `json:"selectedCategoryName"`
	SearchTerm           string `json:"searchTerm"`
	Predefined           []struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	} `json:"predefinedCategories"`
	Categories []domain.CategoryOption `json:"categories"`
}

func decodeHome(t *testing.T, w *httptest.ResponseRecorder) homeResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp homeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (r homeResponse) names() []string {
	out := make([]string, 0, len(r.List.Items))
	for _, item := range r.List.Items {
		out = append(out, item.Name)
	}
	return out
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestRouter(t)

		w := env.newBrowser(t).do("GET", "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "forkandfind", response["service"])
		assert.NotEmpty(t, response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		env := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := env.newBrowser(t).do(method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

func TestHomeEndpoint(t *testing.T) {
	t.Run("first visit browses everything", func(t *testing.T) {
		env := setupTestRouter(t)
		b := env.newBrowser(t)

		resp := decodeHome(t, b.do("GET", "/api/v1/home", ""))

		assert.NotEmpty(t, b.sessionID())
		assert.Equal(t, "all", resp.List.Mode.Kind)
		assert.Equal(t, "ready", resp.List.State)
		assert.Equal(t, fruitNames, resp.names())
		assert.Equal(t, 2, resp.List.Page)
		assert.True(t, resp.List.HasMore)
		assert.Len(t, resp.Predefined, 8)
		assert.Equal(t, []domain.CategoryOption{
			{ID: "en:beverages", DisplayName: "Beverages", ProductCount: 80000},
			{ID: "en:snacks", DisplayName: "Snacks", ProductCount: 50000},
		}, resp.Categories)
	})

	t.Run("initial search", func(t *testing.T) {
		env := setupTestRouter(t)

		resp := decodeHome(t, env.newBrowser(t).do("GET", "/api/v1/home?search=milk", ""))
		assert.Equal(t, "milk", resp.SearchTerm)
		assert.Equal(t, []string{"Whole Milk"}, resp.names())
	})

	t.Run("later visits keep the session state", func(t *testing.T) {
		env := setupTestRouter(t)
		b := env.newBrowser(t)

		decodeHome(t, b.do("GET", "/api/v1/home", ""))
		decodeHome(t, b.do("POST", "/api/v1/home/category", `{"id":"snacks","name":"Snacks"}`))

		resp := decodeHome(t, b.do("GET", "/api/v1/home", ""))
		assert.Equal(t, "snacks", resp.SelectedCategory)
		assert.Equal(t, []string{"Pretzels", "Crackers"}, resp.names())

		resp = decodeHome(t, b.do("GET", "/api/v1/home?search=milk", ""))
		assert.Equal(t, "milk", resp.SearchTerm)
		assert.Empty(t, resp.SelectedCategory)
	})

	t.Run("restores the stored category of a returning browser", func(t *testing.T) {
		env := setupTestRouter(t)
		id := uuid.NewString()
		ctx := context.Background()
		require.NoError(t, env.prefs.Set(ctx, "session:"+id+":"+usecase.PrefSelectedCategory, "snacks"))
		require.NoError(t, env.prefs.Set(ctx, "session:"+id+":"+usecase.PrefSelectedCategoryName, "Snacks"))

		b := env.newBrowser(t)
		b.cookies = []*http.Cookie{{Name: SessionCookie, Value: id}}

		resp := decodeHome(t, b.do("GET", "/api/v1/home", ""))
		assert.Equal(t, "snacks", resp.SelectedCategory)
		assert.Equal(t, "Snacks", resp.SelectedCategoryName)
		assert.Equal(t, id, b.sessionID())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		env := setupTestRouter(t)
		alice := env.newBrowser(t)
		bob := env.newBrowser(t)

		decodeHome(t, alice.do("POST", "/api/v1/home/category", `{"id":"snacks","name":"Snacks"}`))
		resp := decodeHome(t, bob.do("GET", "/api/v1/home", ""))

		assert.NotEqual(t, alice.sessionID(), bob.sessionID())
		assert.Empty(t, resp.SelectedCategory)
		assert.Equal(t, "all", resp.List.Mode.Kind)
	})
}

func TestCategoryAndSearchEndpoints(t *testing.T) {
	t.Run("category and search replace each other", func(t *testing.T) {
		env := setupTestRouter(t)
		b := env.newBrowser(t)
		ctx := context.Background()

		resp := decodeHome(t, b.do("POST", "/api/v1/home/category", `{"id":"snacks","name":"snacks"}`))
		assert.Equal(t, "snacks", resp.SelectedCategory)
		assert.Equal(t, "Snacks", resp.SelectedCategoryName)
		assert.Empty(t, resp.SearchTerm)

		key := "session:" + b.sessionID() + ":" + usecase.PrefSelectedCategory
		stored, err := env.prefs.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "snacks", stored)

		resp = decodeHome(t, b.do("POST", "/api/v1/home/search", `{"term":"milk"}`))
		assert.Equal(t, "milk", resp.SearchTerm)
		assert.Empty(t, resp.SelectedCategory)
		_, err = env.prefs.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrPreferenceNotFound)

		resp = decodeHome(t, b.do("POST", "/api/v1/home/all", ""))
		assert.Equal(t, "all", resp.List.Mode.Kind)
		assert.Empty(t, resp.SearchTerm)
	})

	t.Run("search without results", func(t *testing.T) {
		env := setupTestRouter(t)

		resp := decodeHome(t, env.newBrowser(t).do("POST", "/api/v1/home/search", `{"term":"zzz"}`))
		assert.Equal(t, "error", resp.List.State)
		assert.Empty(t, resp.List.Items)
		assert.Equal(t, `No results found for "zzz"`, resp.List.Message)
	})

	t.Run("rejects invalid bodies", func(t *testing.T) {
		env := setupTestRouter(t)
		b := env.newBrowser(t)

		tests := []struct {
			path string
			body string
		}{
			{path: "/api/v1/home/search", body: `{"term":"   "}`},
			{path: "/api/v1/home/search", body: `{}`},
			{path: "/api/v1/home/search", body: `not json`},
			{path: "/api/v1/home/category", body: `{"name":"Snacks"}`},
			{path: "/api/v1/home/sort", body: `{"field":"price"}`},
			{path: "/api/v1/home/sort", body: `{}`},
		}

		for _, tt := range tests {
			w := b.do("POST", tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tt.path, tt.body)
		}
	})
}

func TestSentinelEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	b := env.newBrowser(t)

	decodeHome(t, b.do("POST", "/api/v1/home/category", `{"id":"snacks","name":"Snacks"}`))

	resp := decodeHome(t, b.do("POST", "/api/v1/home/sentinel", ""))
	assert.Equal(t, []string{"Pretzels", "Crackers", "Popcorn"}, resp.names())
	assert.Equal(t, 3, resp.List.Page)
	assert.Equal(t, "ready", resp.List.State)

	resp = decodeHome(t, b.do("POST", "/api/v1/home/sentinel", ""))
	assert.Equal(t, "exhausted", resp.List.State)
	assert.False(t, resp.List.HasMore)
	assert.Equal(t, "You've reached the end of the list.", resp.List.Message)
	assert.Len(t, resp.List.Items, 3)

	resp = decodeHome(t, b.do("POST", "/api/v1/home/sentinel", ""))
	assert.Equal(t, 3, resp.List.Page)
}

func TestSortEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	b := env.newBrowser(t)
	decodeHome(t, b.do("GET", "/api/v1/home", ""))

	resp := decodeHome(t, b.do("POST", "/api/v1/home/sort", `{"field":"name"}`))
	assert.Equal(t, "desc", resp.List.Sort.Order)
	assert.Equal(t, []string{"Cherry", "Banana", "Apple"}, resp.names())

	resp = decodeHome(t, b.do("POST", "/api/v1/home/sort", `{"field":"name"}`))
	assert.Equal(t, "asc", resp.List.Sort.Order)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry"}, resp.names())

	resp = decodeHome(t, b.do("POST", "/api/v1/home/sort", `{"field":"nutrition"}`))
	assert.Equal(t, "nutrition", resp.List.Sort.Field)
	assert.Equal(t, "asc", resp.List.Sort.Order)
}

func TestCategoriesEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.newBrowser(t).do("GET", "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Predefined []domain.PredefinedCategory `json:"predefinedCategories"`
		Categories []domain.CategoryOption     `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Predefined, 8)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Beverages", resp.Categories[0].DisplayName)
}

func TestProductEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	b := env.newBrowser(t)

	t.Run("returns the detail view", func(t *testing.T) {
		w := b.do("GET", "/api/v1/products/3017620422003", "")
		require.Equal(t, http.StatusOK, w.Code)

		var detail domain.ProductDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, "Nutella", detail.Name)
		assert.Equal(t, "E", detail.NutriscoreGrade)
		assert.Equal(t, "Sugar, palmoil", detail.IngredientsText)
		assert.Equal(t, []string{"vegetarian"}, detail.Labels)
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		w := b.do("GET", "/api/v1/products/0000", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("upstream failure is 502", func(t *testing.T) {
		w := b.do("GET", "/api/v1/products/500", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the dev server", func(t *testing.T) {
		env := setupTestRouter(t)

		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origins get no CORS headers", func(t *testing.T) {
		env := setupTestRouter(t)

		req := httptest.NewRequest("GET", "/api/v1/categories", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	env := setupTestRouter(t)

	env.router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := env.newBrowser(t).do("GET", "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/api/home", "/home", "/api/v2/home", "/api/v1/products"} {
		w := env.newBrowser(t).do("GET", path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
	}
}
