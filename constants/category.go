package constants

import (
	"strings"
)

type Category string

const (
	Services   Category = "Services"
	Supplies   Category = "Supplies"
	Utilities  Category = "Utilities"
	Equipment  Category = "Equipment"
	Travel     Category = "Travel"
	Consulting Category = "Consulting"
	Other      Category = "Other"
)

var allCategories = []Category{
	Services,
	Supplies,
	Utilities,
	Equipment,
	Travel,
	Consulting,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-text label from the model onto the closed
// category set. Unknown labels fall back to Other with ok=false.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"service":              Services,
		"professional services": Services,
		"office supplies":      Supplies,
		"stationery":           Supplies,
		"electricity":          Utilities,
		"water":                Utilities,
		"internet":             Utilities,
		"phone":                Utilities,
		"hardware":             Equipment,
		"machinery":            Equipment,
		"airfare":              Travel,
		"hotel":                Travel,
		"lodging":              Travel,
		"taxi":                 Travel,
		"consultant":           Consulting,
		"advisory":             Consulting,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
