package catalog

import "github.com/fjod/go_storefront/internal/domain"

var categoryLabels = map[string]string{
	"bakery":     "🥐 Bakery",
	"bread":      "🍞 Bread",
	"cakes":      "🎂 Cakes",
	"pastry":     "🥧 Pastry",
	"cookies":    "🍪 Cookies",
	"desserts":   "🍰 Desserts",
	"drinks":     "🥤 Drinks",
	"coffee":     "☕ Coffee",
	"sandwiches": "🥪 Sandwiches",
}

// DisplayName resolves the label shown for a category: the local table first,
// then the backend name, then the raw key.
func DisplayName(category domain.Category) string {
	if label, ok := categoryLabels[category.Key]; ok {
		return label
	}
	if category.Name != "" {
		return category.Name
	}
	return category.Key
}
