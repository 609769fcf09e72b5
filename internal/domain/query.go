package domain

// QueryKind identifies which browsing strategy is active
type QueryKind int

const (
	QueryBrowseAll QueryKind = iota
	QueryCategory
	QuerySearch
)

// String returns the wire name of the kind
func (k QueryKind) String() string {
	switch k {
	case QueryCategory:
		return "category"
	case QuerySearch:
		return "search"
	default:
		return "all"
	}
}

// MarshalText renders the kind by name in JSON views
func (k QueryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// QueryMode is the mutually exclusive browsing strategy: browse everything,
// filter by one category or run a text search. Value carries the category id
// or the search term.
type QueryMode struct {
	Kind  QueryKind `json:"kind"`
	Value string    `json:"value,omitempty"`
}

// BrowseAll lists every product
func BrowseAll() QueryMode {
	return QueryMode{Kind: QueryBrowseAll}
}

// CategoryFilter lists the products of one category
func CategoryFilter(categoryID string) QueryMode {
	return QueryMode{Kind: QueryCategory, Value: categoryID}
}

// TextSearch lists the products matching a term
func TextSearch(term string) QueryMode {
	return QueryMode{Kind: QuerySearch, Value: term}
}

// CategoryID returns the selected category, or "" when no category is active
func (m QueryMode) CategoryID() string {
	if m.Kind == QueryCategory {
		return m.Value
	}
	return ""
}

// SearchTerm returns the active term, or "" when no search is active
func (m QueryMode) SearchTerm() string {
	if m.Kind == QuerySearch {
		return m.Value
	}
	return ""
}

// SortField is the key the list is ordered by
type SortField string

const (
	SortByName           SortField = "name"
	SortByNutritionGrade SortField = "nutrition"
)

// SortOrder is the sort direction
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortSpec describes how the list view is ordered
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders by name, A to Z
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByName, Order: Ascending}
}

// Toggle returns the spec after the user picks field: the same field flips
// the order, a different field starts ascending.
func (s SortSpec) Toggle(field SortField) SortSpec {
	if s.Field == field {
		if s.Order == Ascending {
			return SortSpec{Field: field, Order: Descending}
		}
		return SortSpec{Field: field, Order: Ascending}
	}
	return SortSpec{Field: field, Order: Ascending}
}

// ParseSortField validates a user supplied field name
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case SortByName:
		return SortByName, true
	case SortByNutritionGrade:
		return SortByNutritionGrade, true
	}
	return "", false
}
