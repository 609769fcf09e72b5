package openfoodfacts

import (
	"encoding/json"
	"strings"

	"github.com/forkandfind/client/internal/domain"
	"github.com/samber/lo"
)

// detailNutriments are the nutriments shown on the detail view, in display order
var detailNutriments = []string{
	"energy", "fat", "saturated-fat", "carbohydrates",
	"sugars", "proteins", "salt", "fiber",
}

// labelLocalePrefixes are stripped from label tags
var labelLocalePrefixes = []string{"en:", "fr:"}

// DecodeProducts decodes each raw record on its own so that one malformed
// record does not spoil the page. Records that are not JSON objects are dropped.
func DecodeProducts(records []json.RawMessage) []domain.RawProduct {
	return lo.FilterMap(records, func(record json.RawMessage, _ int) (domain.RawProduct, bool) {
		var product domain.RawProduct
		if err := json.Unmarshal(record, &product); err != nil {
			return domain.RawProduct{}, false
		}
		return product, true
	})
}

// NormalizeProducts converts raw records into list items. Records without a
// code, a name or any image are dropped; survivors keep their input order.
func NormalizeProducts(products []domain.RawProduct) []domain.FoodItem {
	return lo.FilterMap(products, func(p domain.RawProduct, _ int) (domain.FoodItem, bool) {
		return normalizeProduct(p)
	})
}

func normalizeProduct(p domain.RawProduct) (domain.FoodItem, bool) {
	code := strings.TrimSpace(string(p.Code))
	if code == "" {
		return domain.FoodItem{}, false
	}

	name, ok := rawName(p)
	if !ok {
		return domain.FoodItem{}, false
	}

	imageURL := SelectImage(p)
	if imageURL == "" {
		return domain.FoodItem{}, false
	}

	categories := p.Categories
	if categories.IsEmpty() {
		categories = p.CategoriesTags
	}
	ingredients := p.Ingredients
	if ingredients.IsEmpty() {
		ingredients = p.IngredientsText
	}

	return domain.FoodItem{
		Code:           code,
		Name:           name,
		ImageURL:       imageURL,
		Categories:     categories,
		Ingredients:    ingredients,
		NutritionGrade: NormalizeGrade(p.NutritionGrades, p.NutriscoreGrade),
	}, true
}

// rawName returns the display name, reporting false when the record has none.
// A name of only whitespace becomes the placeholder.
func rawName(p domain.RawProduct) (string, bool) {
	name := p.ProductName
	if name == "" {
		name = p.ProductNameEn
	}
	if name == "" {
		return "", false
	}
	if strings.TrimSpace(name) == "" {
		return domain.UnknownProductName, true
	}
	return strings.TrimSpace(name), true
}

// SelectImage returns the first non-empty image field in priority order:
// image_url, image_thumb_url, image_small_url, image_front_url.
func SelectImage(p domain.RawProduct) string {
	for _, candidate := range []string{p.ImageURL, p.ImageThumbURL, p.ImageSmallURL, p.ImageFrontURL} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// NormalizeGrade returns the first grade that is a single letter A-E,
// uppercased, or "N/A".
func NormalizeGrade(grades ...string) string {
	for _, g := range grades {
		g = strings.ToUpper(strings.TrimSpace(g))
		if len(g) == 1 && g[0] >= 'A' && g[0] <= 'E' {
			return g
		}
	}
	return domain.GradeUnavailable
}

// MapProductDetail converts a raw product into the detail view model
func MapProductDetail(p *domain.RawProduct) *domain.ProductDetail {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = domain.UnknownProductName
	}

	categories := p.Categories
	if categories.IsEmpty() {
		categories = p.CategoriesTags
	}

	ingredients := "No ingredients information available"
	if text, ok := p.IngredientsText.Value().(string); ok && strings.TrimSpace(text) != "" {
		ingredients = strings.ReplaceAll(text, "_", "")
	}

	grade := strings.ToUpper(strings.TrimSpace(p.NutriscoreGrade))
	if grade == "" {
		grade = "UNKNOWN"
	}

	levels := map[string]string{}
	if raw, ok := p.NutrientLevels.Value().(map[string]any); ok {
		for key, value := range raw {
			if s, ok := value.(string); ok {
				levels[key] = s
			}
		}
	}

	return &domain.ProductDetail{
		Code:            string(p.Code),
		Name:            name,
		ImageURL:        SelectImage(*p),
		Categories:      domain.Stringify(categories.Value()),
		IngredientsText: ingredients,
		NutriscoreGrade: grade,
		NutrientLevels:  levels,
		Nutriments:      extractNutriments(p.Nutriments.Value()),
		Labels:          cleanLabels(p.LabelsTags.Value()),
	}
}

// extractNutriments keeps the numeric detail nutriments with their units,
// defaulting the unit to grams.
func extractNutriments(raw any) []domain.NutrimentValue {
	nutriments, _ := raw.(map[string]any)
	values := make([]domain.NutrimentValue, 0, len(detailNutriments))
	for _, key := range detailNutriments {
		v, ok := nutriments[key].(float64)
		if !ok {
			continue
		}
		unit, _ := nutriments[key+"_unit"].(string)
		if unit == "" {
			unit = "g"
		}
		values = append(values, domain.NutrimentValue{Name: key, Value: v, Unit: unit})
	}
	return values
}

func cleanLabels(raw any) []string {
	items, _ := raw.([]any)
	labels := lo.FilterMap(items, func(item any, _ int) (string, bool) {
		tag, ok := item.(string)
		if !ok {
			return "", false
		}
		for _, prefix := range labelLocalePrefixes {
			tag = strings.Replace(tag, prefix, "", 1)
		}
		return tag, true
	})
	return lo.Uniq(labels)
}
