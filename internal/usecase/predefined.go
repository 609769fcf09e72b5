package usecase

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/forkandfind/client/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed predefined_categories.yaml
var predefinedYAML []byte

var predefinedCategories = mustParsePredefined(predefinedYAML)

// ParsePredefinedCategories decodes a YAML list of categories
func ParsePredefinedCategories(data []byte) ([]domain.PredefinedCategory, error) {
	var categories []domain.PredefinedCategory
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse predefined categories: %w", err)
	}
	for i, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("predefined category %d has no name", i)
		}
	}
	return categories, nil
}

func mustParsePredefined(data []byte) []domain.PredefinedCategory {
	categories, err := ParsePredefinedCategories(data)
	if err != nil {
		panic(err)
	}
	return categories
}

// PredefinedCategories returns the fixed homepage categories
func PredefinedCategories() []domain.PredefinedCategory {
	return slices.Clone(predefinedCategories)
}
