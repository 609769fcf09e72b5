package domain

import "strings"

// CategoryOption is an auxiliary category offered in the secondary picker
type CategoryOption struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	ProductCount int    `json:"productCount"`
}

// PredefinedCategory is one of the fixed categories shown on the homepage
type PredefinedCategory struct {
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// ID is the category id used for upstream queries
func (c PredefinedCategory) ID() string {
	return strings.ToLower(c.Name)
}

// Taxonomy is the full category listing with per-category product counts
type Taxonomy struct {
	Count int           `json:"count"`
	Tags  []TaxonomyTag `json:"tags"`
}

// TaxonomyTag is a single category of the taxonomy
type TaxonomyTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Products int    `json:"products"`
}
