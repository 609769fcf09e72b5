package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UnknownProductName is shown for products whose name is blank
const UnknownProductName = "Unknown Product"

// GradeUnavailable is the nutrition grade of products without a Nutri-Score
const GradeUnavailable = "N/A"

// FoodItem is a normalized product ready for the list view
type FoodItem struct {
	Code           string   `json:"code"`
	Name           string   `json:"productName"`
	ImageURL       string   `json:"imageUrl"`
	Categories     RawValue `json:"categories"`
	Ingredients    RawValue `json:"ingredients"`
	NutritionGrade string   `json:"nutritionGrade"`
}

// RawProduct is a product record as the Open Food Facts API returns it.
// Every field is optional and several fields have more than one spelling.
type RawProduct struct {
	Code            FlexString `json:"code"`
	ProductName     string     `json:"product_name"`
	ProductNameEn   string     `json:"product_name_en"`
	ImageURL        string     `json:"image_url"`
	ImageThumbURL   string     `json:"image_thumb_url"`
	ImageSmallURL   string     `json:"image_small_url"`
	ImageFrontURL   string     `json:"image_front_url"`
	Categories      RawValue   `json:"categories"`
	CategoriesTags  RawValue   `json:"categories_tags"`
	Ingredients     RawValue   `json:"ingredients"`
	IngredientsText RawValue   `json:"ingredients_text"`
	NutritionGrades string     `json:"nutrition_grades"`
	NutriscoreGrade string     `json:"nutriscore_grade"`

	// Detail-only fields
	NutrientLevels RawValue `json:"nutrient_levels"`
	Nutriments     RawValue `json:"nutriments"`
	LabelsTags     RawValue `json:"labels_tags"`
}

// ProductPage is one page of raw products from a listing endpoint
type ProductPage struct {
	Products []RawProduct
	Count    int
	Page     int
}

// ProductDetail is the normalized product shown on the detail view
type ProductDetail struct {
	Code            string            `json:"code"`
	Name            string            `json:"productName"`
	ImageURL        string            `json:"imageUrl"`
	Categories      string            `json:"categories"`
	IngredientsText string            `json:"ingredientsText"`
	NutriscoreGrade string            `json:"nutriscoreGrade"`
	NutrientLevels  map[string]string `json:"nutrientLevels"`
	Nutriments      []NutrimentValue  `json:"nutriments"`
	Labels          []string          `json:"labels"`
}

// NutrimentValue is a single nutriment with its unit
type NutrimentValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// FlexString decodes a JSON string or number into a string.
// Any other JSON type decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*f = FlexString(strconv.FormatInt(i, 10))
		} else {
			*f = FlexString(n.String())
		}
	default:
		*f = ""
	}
	return nil
}
