package models

import "time"

// Canonical wardrobe categories in their fixed iteration order.
const (
	CategoryTop         = "top"
	CategoryBottom      = "bottom"
	CategoryShoes       = "shoes"
	CategoryOuterwear   = "outerwear"
	CategoryAccessories = "accessories"
)

// WardrobeCategories returns the canonical categories in stable order.
func WardrobeCategories() []string {
	return []string{CategoryTop, CategoryBottom, CategoryShoes, CategoryOuterwear, CategoryAccessories}
}

// Garment is one wardrobe item: an S3 object key plus an optional short label.
type Garment struct {
	Key     string    `bson:"key" json:"key"`
	Label   string    `bson:"label,omitempty" json:"label,omitempty"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Wardrobe keeps garments in fixed category buckets. The schema is closed on
// purpose: categories arriving from user text or LLM output must be normalised
// to one of the canonical buckets before they get here.
type Wardrobe struct {
	Top         []Garment `bson:"top" json:"top"`
	Bottom      []Garment `bson:"bottom" json:"bottom"`
	Shoes       []Garment `bson:"shoes" json:"shoes"`
	Outerwear   []Garment `bson:"outerwear" json:"outerwear"`
	Accessories []Garment `bson:"accessories" json:"accessories"`
}

func (w *Wardrobe) bucket(category string) *[]Garment {
	switch category {
	case CategoryTop:
		return &w.Top
	case CategoryBottom:
		return &w.Bottom
	case CategoryShoes:
		return &w.Shoes
	case CategoryOuterwear:
		return &w.Outerwear
	case CategoryAccessories:
		return &w.Accessories
	}
	return nil
}

// Items returns the garments of one canonical category, or nil for anything else.
func (w *Wardrobe) Items(category string) []Garment {
	if b := w.bucket(category); b != nil {
		return *b
	}
	return nil
}

// Add appends a garment to the given category. It reports false when the
// category is not one of the canonical buckets.
func (w *Wardrobe) Add(category string, g Garment) bool {
	b := w.bucket(category)
	if b == nil {
		return false
	}
	*b = append(*b, g)
	return true
}

// IsEmpty reports whether no category holds any garment.
func (w *Wardrobe) IsEmpty() bool {
	for _, category := range WardrobeCategories() {
		if len(w.Items(category)) > 0 {
			return false
		}
	}
	return true
}

// CategoryOf returns the category holding the garment with the given key,
// or "" when the key is unknown.
func (w *Wardrobe) CategoryOf(key string) string {
	for _, category := range WardrobeCategories() {
		for _, g := range w.Items(category) {
			if g.Key == key {
				return category
			}
		}
	}
	return ""
}

// Find returns the garment with the given key, if present.
func (w *Wardrobe) Find(key string) (Garment, bool) {
	for _, category := range WardrobeCategories() {
		for _, g := range w.Items(category) {
			if g.Key == key {
				return g, true
			}
		}
	}
	return Garment{}, false
}

// Count returns the total number of garments across all categories.
func (w *Wardrobe) Count() int {
	n := 0
	for _, category := range WardrobeCategories() {
		n += len(w.Items(category))
	}
	return n
}

// Preferences is the long-term style record extracted from free text.
// Unknown fields coming back from the LLM are dropped at decode time.
type Preferences struct {
	StyleTags []string `bson:"style_tags,omitempty" json:"style_tags"`
	Colors    []string `bson:"colors,omitempty" json:"colors"`
	BrandRefs []string `bson:"brand_refs,omitempty" json:"brand_refs"`
	Notes     string   `bson:"notes,omitempty" json:"notes"`
}

// IsSet reports whether the user has described any preference at all.
func (p Preferences) IsSet() bool {
	return len(p.StyleTags) > 0 || len(p.Colors) > 0 || len(p.BrandRefs) > 0 || p.Notes != ""
}

// DailyContext is the per-request context for one outfit request.
type DailyContext struct {
	Occasion   string `bson:"occasion,omitempty" json:"occasion"`
	StyleToday string `bson:"style_today,omitempty" json:"style_today"`
	Weather    string `bson:"weather,omitempty" json:"weather"`
	Notes      string `bson:"notes,omitempty" json:"notes"`
}

// Merge overlays non-empty fields of other onto the context.
func (d *DailyContext) Merge(other DailyContext) {
	if other.Occasion != "" {
		d.Occasion = other.Occasion
	}
	if other.StyleToday != "" {
		d.StyleToday = other.StyleToday
	}
	if other.Weather != "" {
		d.Weather = other.Weather
	}
	if other.Notes != "" {
		d.Notes = other.Notes
	}
}

// FeedbackEntry is one reaction to a delivered outfit.
type FeedbackEntry struct {
	Sentiment string    `bson:"sentiment" json:"sentiment"` // "positive" or "negative"
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Profile is the persistent per-user record driving the conversation.
type Profile struct {
	UserID          string          `bson:"user_id" json:"user_id"`
	Stage           string          `bson:"stage" json:"stage"`
	SelfieKey       string          `bson:"selfie_key,omitempty" json:"selfie_key,omitempty"`
	Wardrobe        Wardrobe        `bson:"wardrobe" json:"wardrobe"`
	PendingItem     *Garment        `bson:"pending_item,omitempty" json:"pending_item,omitempty"`
	Preferences     Preferences     `bson:"preferences" json:"preferences"`
	DailyContext    DailyContext    `bson:"daily_context" json:"daily_context"`
	FeedbackHistory []FeedbackEntry `bson:"feedback_history,omitempty" json:"feedback_history,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
}

// NewProfile returns a fresh profile at the initial stage.
func NewProfile(userID string) *Profile {
	now := time.Now()
	return &Profile{
		UserID:    userID,
		Stage:     "awaiting_selfie",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
