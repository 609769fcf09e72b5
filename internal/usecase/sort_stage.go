package usecase

import (
	"slices"

	"github.com/forkandfind/client/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortItems reorders items in place by spec. It never fetches and sorting an
// already sorted slice with the same spec leaves the keys in the same order.
func SortItems(items []domain.FoodItem, spec domain.SortSpec) {
	// Collators are not safe for concurrent use
	col := collate.New(language.English)

	key := func(item domain.FoodItem) string {
		if spec.Field == domain.SortByNutritionGrade {
			return item.NutritionGrade
		}
		return item.Name
	}

	slices.SortStableFunc(items, func(a, b domain.FoodItem) int {
		cmp := col.CompareString(key(a), key(b))
		if spec.Order == domain.Descending {
			return -cmp
		}
		return cmp
	})
}
