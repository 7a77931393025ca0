package aitunnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedRecommendation is returned only when the provider response
// cannot be salvaged at all (no choices came back). Everything else is
// coerced into a usable Recommendation.
var ErrMalformedRecommendation = errors.New("recommendation service returned malformed output")

// ErrMalformedPreferences is returned when the preference-extraction response
// cannot be parsed even after repair.
var ErrMalformedPreferences = errors.New("preference service returned malformed output")

// DefaultNaturalText is used when the model answered without a usable summary.
const DefaultNaturalText = "I could not put together an outfit this time. Try adding a few more garments or rephrasing your request."

// WardrobeItem describes one garment in the recommendation request payload.
type WardrobeItem struct {
	ItemReference string `json:"item_reference"`
	Category      string `json:"category"`
	Label         string `json:"label,omitempty"`
}

// OutfitRequest is the payload sent to the chat model.
type OutfitRequest struct {
	Wardrobe       []WardrobeItem    `json:"wardrobe"`
	StyleReference string            `json:"style_reference"`
	DailyContext   map[string]string `json:"daily_context"`
}

// OutfitPick is one garment selected by the model.
type OutfitPick struct {
	ItemReference string `json:"item_reference"`
	Description   string `json:"description,omitempty"`
}

// Recommendation is the validated four-field answer of the chat model.
type Recommendation struct {
	SuggestedOutfit []OutfitPick `json:"suggested_outfit"`
	NaturalText     string       `json:"natural_text"`
	Reasons         []string     `json:"reasons"`
	MissingItems    []string     `json:"missing_items"`
}

const recommendSystemPrompt = "You are an AI stylist. Pick an outfit strictly from the user's wardrobe items. " +
	"Every item_reference in your answer must be copied verbatim from the wardrobe list. " +
	"Answer with strict JSON only, no markdown, in the shape " +
	`{"suggested_outfit": [{"item_reference": "...", "description": "..."}], ` +
	`"natural_text": "...", "reasons": ["..."], "missing_items": ["..."]}. ` +
	"natural_text is a short friendly summary of the look. missing_items lists garment types " +
	"that would complete the look but are absent from the wardrobe. Do not invent items."

// PlanOutfit asks the chat model to select an outfit from the wardrobe.
// Malformed model output is coerced to a safe default rather than surfaced.
func (c *Client) PlanOutfit(ctx context.Context, req OutfitRequest) (*Recommendation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outfit request: %w", err)
	}

	messages := []ChatMessage{
		{Role: "system", Content: recommendSystemPrompt},
		{Role: "user", Content: string(payload)},
	}
	resp, err := c.ChatCompletion(ctx, messages, map[string]interface{}{
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	content, ok := resp.FirstContent()
	if !ok {
		return nil, ErrMalformedRecommendation
	}
	return CoerceRecommendation(content), nil
}

// CoerceRecommendation turns whatever the model answered into a usable
// Recommendation. The ladder is: strict JSON parse, then jsonrepair and
// re-parse, then wrapping the raw content as natural text. Missing list
// fields become empty slices and a missing summary gets the canned default.
func CoerceRecommendation(content string) *Recommendation {
	var rec Recommendation
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &rec) != nil {
			rec = Recommendation{NaturalText: content}
		}
	}

	if rec.SuggestedOutfit == nil {
		rec.SuggestedOutfit = []OutfitPick{}
	}
	if rec.Reasons == nil {
		rec.Reasons = []string{}
	}
	if rec.MissingItems == nil {
		rec.MissingItems = []string{}
	}
	if rec.NaturalText == "" {
		rec.NaturalText = DefaultNaturalText
	}
	return &rec
}

// StylePreferences is the structured result of preference extraction.
type StylePreferences struct {
	StyleTags []string `json:"style_tags"`
	Colors    []string `json:"colors"`
	BrandRefs []string `json:"brand_refs"`
	Notes     string   `json:"notes"`
}

const preferencesSystemPrompt = "You are a stylist assistant. Classify the user's free-text style description " +
	"and answer with strict JSON only, in the shape " +
	`{"style_tags": [], "colors": [], "brand_refs": [], "notes": ""}.`

// ExtractPreferences classifies a free-text style description into the
// fixed preference schema.
func (c *Client) ExtractPreferences(ctx context.Context, text string) (*StylePreferences, error) {
	messages := []ChatMessage{
		{Role: "system", Content: preferencesSystemPrompt},
		{Role: "user", Content: text},
	}
	resp, err := c.ChatCompletion(ctx, messages, map[string]interface{}{
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	content, ok := resp.FirstContent()
	if !ok {
		return nil, ErrMalformedPreferences
	}

	var prefs StylePreferences
	if err := json.Unmarshal([]byte(content), &prefs); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return nil, ErrMalformedPreferences
		}
		if err := json.Unmarshal([]byte(repaired), &prefs); err != nil {
			return nil, ErrMalformedPreferences
		}
	}
	return &prefs, nil
}
