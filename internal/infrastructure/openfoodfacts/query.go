package openfoodfacts

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/forkandfind/client/internal/domain"
)

// PageSize is the number of products requested per listing page
const PageSize = 20

// Request describes one upstream call: a path relative to the API base URL
// and its query parameters.
type Request struct {
	Path  string
	Query url.Values
}

// URL resolves the request against baseURL
func (r Request) URL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// BuildListRequest builds the listing request for page in the given mode.
// Pages below 1 are treated as page 1.
func BuildListRequest(page int, mode domain.QueryMode) Request {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(PageSize))

	switch mode.Kind {
	case domain.QueryCategory:
		return Request{
			Path:  "/facets/categories/" + url.PathEscape(mode.Value) + ".json",
			Query: params,
		}
	case domain.QuerySearch:
		params.Set("search_terms", mode.Value)
		params.Set("search_simple", "1")
		params.Set("action", "process")
		params.Set("json", "1")
		return Request{Path: "/cgi/search.pl", Query: params}
	default:
		return Request{Path: "/api/v2/search.json", Query: params}
	}
}

// BuildProductRequest builds the single product lookup request
func BuildProductRequest(code string) Request {
	return Request{Path: "/api/v0/product/" + url.PathEscape(code) + ".json"}
}

// BuildTaxonomyRequest builds the category taxonomy request
func BuildTaxonomyRequest() Request {
	return Request{Path: "/categories.json"}
}
