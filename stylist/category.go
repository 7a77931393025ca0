package stylist

import (
	"strings"

	"github.com/fitly-app/stylist/models"
)

// categoryAliases maps lowercase user input to canonical wardrobe categories.
// Static configuration data; matching is trim + lowercase exact, no fuzziness.
var categoryAliases = map[string]string{
	"top":       models.CategoryTop,
	"shirt":     models.CategoryTop,
	"t-shirt":   models.CategoryTop,
	"tshirt":    models.CategoryTop,
	"tee":       models.CategoryTop,
	"blouse":    models.CategoryTop,
	"sweater":   models.CategoryTop,
	"hoodie":    models.CategoryTop,
	"dress":     models.CategoryTop,

	"bottom":   models.CategoryBottom,
	"pants":    models.CategoryBottom,
	"trousers": models.CategoryBottom,
	"jeans":    models.CategoryBottom,
	"skirt":    models.CategoryBottom,
	"shorts":   models.CategoryBottom,
	"leggings": models.CategoryBottom,

	"shoes":    models.CategoryShoes,
	"sneakers": models.CategoryShoes,
	"boots":    models.CategoryShoes,
	"heels":    models.CategoryShoes,
	"sandals":  models.CategoryShoes,

	"outerwear": models.CategoryOuterwear,
	"jacket":    models.CategoryOuterwear,
	"coat":      models.CategoryOuterwear,
	"blazer":    models.CategoryOuterwear,
	"parka":     models.CategoryOuterwear,

	"accessory":   models.CategoryAccessories,
	"accessories": models.CategoryAccessories,
	"bag":         models.CategoryAccessories,
	"belt":        models.CategoryAccessories,
	"hat":         models.CategoryAccessories,
	"scarf":       models.CategoryAccessories,
	"jewelry":     models.CategoryAccessories,
}

// NormalizeCategory maps free text to a canonical category. ok is false when
// no alias matches, signalling the caller to re-prompt with the canonical
// choice set rather than guess.
func NormalizeCategory(raw string) (category string, ok bool) {
	category, ok = categoryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return category, ok
}

// CategoryChoices returns the canonical category names offered when the user
// needs to pick one.
func CategoryChoices() []string {
	return models.WardrobeCategories()
}
