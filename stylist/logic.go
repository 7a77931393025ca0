package stylist

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/models"
)

// maxFallbackGarments caps the substitute selection used when none of the
// model's picks match the wardrobe.
const maxFallbackGarments = 3

// OutfitResult is the combined outcome of one outfit build.
type OutfitResult struct {
	Summary        string
	SelectedKeys   []string
	Prompt         string
	ImageBytes     []byte
	ImageURL       string
	NoImageReason  string
	Recommendation *aitunnel.Recommendation
}

// Logic orchestrates preference parsing, outfit planning, and image
// generation on top of the profile store.
type Logic struct {
	store       ProfileStore
	media       MediaStore
	recommender Recommender
	prefs       PreferenceExtractor
	images      ImageGenerator
}

// NewLogic wires the orchestrator.
func NewLogic(store ProfileStore, media MediaStore, recommender Recommender, prefs PreferenceExtractor, images ImageGenerator) *Logic {
	return &Logic{store: store, media: media, recommender: recommender, prefs: prefs, images: images}
}

// UpdatePreferences analyses free-form text and updates stored preferences.
func (l *Logic) UpdatePreferences(ctx context.Context, p *models.Profile, text string) (*models.Preferences, error) {
	extracted, err := l.prefs.ExtractPreferences(ctx, text)
	if err != nil {
		if errors.Is(err, aitunnel.ErrMalformedPreferences) {
			return nil, &UserError{Message: "Could not read your style preferences. Try describing them differently.", Err: err}
		}
		return nil, &UserError{Message: "The style service is temporarily unavailable. Please try again later.", Err: err}
	}

	prefs := models.Preferences{
		StyleTags: extracted.StyleTags,
		Colors:    extracted.Colors,
		BrandRefs: extracted.BrandRefs,
		Notes:     extracted.Notes,
	}
	if err := l.store.UpdatePreferences(ctx, p, prefs); err != nil {
		return nil, err
	}
	return &p.Preferences, nil
}

// BuildOutfit runs the full pipeline: local precondition checks, the
// recommendation call, garment selection, and the image call. It never
// retries a remote call; that decision belongs to the caller.
func (l *Logic) BuildOutfit(ctx context.Context, p *models.Profile, extra models.DailyContext) (*OutfitResult, error) {
	if p.SelfieKey == "" {
		return nil, ErrNoSelfie
	}
	if p.Wardrobe.IsEmpty() {
		return nil, ErrEmptyWardrobe
	}

	rec, err := l.recommender.PlanOutfit(ctx, l.buildOutfitRequest(p, extra))
	if err != nil {
		if errors.Is(err, aitunnel.ErrMalformedRecommendation) {
			return nil, &UserError{Message: "The stylist service returned an invalid response. Please try again.", Err: err}
		}
		return nil, &UserError{Message: "The stylist service is temporarily unavailable. Please try again later.", Err: err}
	}

	selected := selectGarments(p, rec)
	labels := garmentLabels(selected)

	prompt := BuildImagePrompt(labels, PromptContext{
		Description: rec.NaturalText,
		Style:       p.Preferences.Notes,
		Occasion:    firstNonEmpty(extra.Occasion, p.DailyContext.Occasion),
		Weather:     firstNonEmpty(extra.Weather, p.DailyContext.Weather),
	})

	imgReq := aitunnel.ImageRequest{
		SelfieRef:    l.presign(ctx, p.SelfieKey),
		Instructions: prompt,
		Size:         "1024x1536",
		Quality:      "high",
	}
	for _, g := range selected {
		imgReq.Garments = append(imgReq.Garments, aitunnel.GarmentImage{
			Ref:   l.presign(ctx, g.Key),
			Label: labelOrKey(g),
		})
	}

	imageResult, err := l.images.GenerateOutfitImage(ctx, imgReq)
	if err != nil {
		return nil, &UserError{Message: "Could not generate the outfit image. Please try again later.", Err: err}
	}

	result := &OutfitResult{
		Summary:        rec.NaturalText,
		Prompt:         imageResult.PromptUsed,
		ImageBytes:     imageResult.ImageBytes,
		ImageURL:       imageResult.ImageURL,
		NoImageReason:  imageResult.ErrorCode,
		Recommendation: rec,
	}
	for _, g := range selected {
		result.SelectedKeys = append(result.SelectedKeys, g.Key)
	}
	return result, nil
}

func (l *Logic) buildOutfitRequest(p *models.Profile, extra models.DailyContext) aitunnel.OutfitRequest {
	req := aitunnel.OutfitRequest{
		StyleReference: styleReference(p.Preferences),
		DailyContext:   map[string]string{},
	}

	for _, category := range models.WardrobeCategories() {
		for _, g := range p.Wardrobe.Items(category) {
			req.Wardrobe = append(req.Wardrobe, aitunnel.WardrobeItem{
				ItemReference: g.Key,
				Category:      category,
				Label:         g.Label,
			})
		}
	}

	dcx := p.DailyContext
	dcx.Merge(extra)
	if dcx.Occasion != "" {
		req.DailyContext["occasion"] = dcx.Occasion
	}
	if dcx.StyleToday != "" {
		req.DailyContext["style_today"] = dcx.StyleToday
	}
	if dcx.Weather != "" {
		req.DailyContext["weather"] = dcx.Weather
	}
	if dcx.Notes != "" {
		req.DailyContext["notes"] = dcx.Notes
	}
	return req
}

// selectGarments intersects the model's picks with the wardrobe. When the
// intersection is empty, it falls back to the first garment of each category
// in fixed order, capped, so that image generation always receives something
// as long as the wardrobe is non-empty.
func selectGarments(p *models.Profile, rec *aitunnel.Recommendation) []models.Garment {
	var selected []models.Garment
	seen := map[string]bool{}
	for _, pick := range rec.SuggestedOutfit {
		g, ok := p.Wardrobe.Find(pick.ItemReference)
		if !ok || seen[g.Key] {
			continue
		}
		if pick.Description != "" && g.Label == "" {
			g.Label = pick.Description
		}
		seen[g.Key] = true
		selected = append(selected, g)
	}
	if len(selected) > 0 {
		return selected
	}

	for _, category := range models.WardrobeCategories() {
		items := p.Wardrobe.Items(category)
		if len(items) == 0 {
			continue
		}
		selected = append(selected, items[0])
		if len(selected) == maxFallbackGarments {
			break
		}
	}
	return selected
}

func garmentLabels(garments []models.Garment) []string {
	labels := make([]string, 0, len(garments))
	for _, g := range garments {
		labels = append(labels, labelOrKey(g))
	}
	return labels
}

// labelOrKey prefers the stored label, falling back to the object key's
// basename without extension.
func labelOrKey(g models.Garment) string {
	if g.Label != "" {
		return g.Label
	}
	base := path.Base(g.Key)
	return strings.TrimSuffix(base, path.Ext(base))
}

func styleReference(prefs models.Preferences) string {
	var parts []string
	if len(prefs.StyleTags) > 0 {
		parts = append(parts, strings.Join(prefs.StyleTags, ", "))
	}
	if len(prefs.Colors) > 0 {
		parts = append(parts, "colors: "+strings.Join(prefs.Colors, ", "))
	}
	if len(prefs.BrandRefs) > 0 {
		parts = append(parts, "brands: "+strings.Join(prefs.BrandRefs, ", "))
	}
	if prefs.Notes != "" {
		parts = append(parts, prefs.Notes)
	}
	return strings.Join(parts, "; ")
}

// presign resolves a stored key to a fetchable URL, falling back to the raw
// key when signing fails.
func (l *Logic) presign(ctx context.Context, key string) string {
	url, err := l.media.PresignURL(ctx, key)
	if err != nil {
		return key
	}
	return url
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
