package stylist

import (
	"testing"

	"github.com/fitly-app/stylist/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"top", models.CategoryTop},
		{"T-Shirt", models.CategoryTop},
		{"  hoodie  ", models.CategoryTop},
		{"dress", models.CategoryTop},
		{"JEANS", models.CategoryBottom},
		{"skirt", models.CategoryBottom},
		{"sneakers", models.CategoryShoes},
		{"Coat", models.CategoryOuterwear},
		{"bag", models.CategoryAccessories},
		{"accessories", models.CategoryAccessories},
	}
	for _, tc := range tests {
		got, ok := NormalizeCategory(tc.in)
		assert.True(t, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeCategoryUnknown(t *testing.T) {
	for _, in := range []string{"", "spaceship", "blue jeans", "topp"} {
		_, ok := NormalizeCategory(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestCategoryChoicesOrder(t *testing.T) {
	assert.Equal(t, []string{"top", "bottom", "shoes", "outerwear", "accessories"}, CategoryChoices())
}
