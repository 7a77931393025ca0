package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestWardrobeAddAndFind(t *testing.T) {
	var w Wardrobe
	assert.True(t, w.IsEmpty())

	require.True(t, w.Add(CategoryTop, Garment{Key: "t1", Label: "white tee"}))
	require.True(t, w.Add(CategoryShoes, Garment{Key: "s1"}))
	assert.False(t, w.Add("spaceship", Garment{Key: "x"}))

	assert.False(t, w.IsEmpty())
	assert.Equal(t, 2, w.Count())

	g, ok := w.Find("t1")
	require.True(t, ok)
	assert.Equal(t, "white tee", g.Label)
	assert.Equal(t, CategoryTop, w.CategoryOf("t1"))

	_, ok = w.Find("missing")
	assert.False(t, ok)
	assert.Equal(t, "", w.CategoryOf("missing"))
}

func TestWardrobeCategoriesOrder(t *testing.T) {
	assert.Equal(t,
		[]string{CategoryTop, CategoryBottom, CategoryShoes, CategoryOuterwear, CategoryAccessories},
		WardrobeCategories())
}

func TestPreferencesIsSet(t *testing.T) {
	assert.False(t, Preferences{}.IsSet())
	assert.True(t, Preferences{StyleTags: []string{"casual"}}.IsSet())
	assert.True(t, Preferences{Notes: "minimal"}.IsSet())
}

func TestDailyContextMerge(t *testing.T) {
	d := DailyContext{Occasion: "office", Weather: "rainy"}
	d.Merge(DailyContext{Occasion: "dinner", Notes: "formal"})

	assert.Equal(t, "dinner", d.Occasion)
	assert.Equal(t, "rainy", d.Weather, "empty incoming fields keep the stored value")
	assert.Equal(t, "formal", d.Notes)
}

func TestNewProfile(t *testing.T) {
	p := NewProfile("u1")
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "awaiting_selfie", p.Stage)
	assert.True(t, p.Wardrobe.IsEmpty())
	assert.Nil(t, p.PendingItem)
}

// Profiles written by older versions may miss optional fields entirely;
// decoding must leave those at their zero values instead of failing.
func TestProfileDecodesPartialDocument(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"user_id": "u1",
		"stage":   "ready",
		"wardrobe": bson.M{
			"top": []bson.M{{"key": "t1", "label": "white tee"}},
		},
	})
	require.NoError(t, err)

	var p Profile
	require.NoError(t, bson.Unmarshal(raw, &p))

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "ready", p.Stage)
	assert.Equal(t, 1, p.Wardrobe.Count())
	assert.Equal(t, DailyContext{}, p.DailyContext)
	assert.Nil(t, p.PendingItem)
	assert.Empty(t, p.SelfieKey)
}
