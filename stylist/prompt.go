package stylist

import "strings"

// PromptContext carries the structured hints used to build the visual prompt.
type PromptContext struct {
	Description string
	Style       string
	Occasion    string
	Weather     string
	Mood        string
}

// Summary renders the context as prompt sentences.
func (c PromptContext) Summary() string {
	parts := []string{c.Description}
	if c.Style != "" {
		parts = append(parts, "Style: "+c.Style+".")
	}
	if c.Occasion != "" {
		parts = append(parts, "Occasion: "+c.Occasion+".")
	}
	if c.Weather != "" {
		parts = append(parts, "Weather: "+c.Weather+".")
	}
	if c.Mood != "" {
		parts = append(parts, "Mood: "+c.Mood+".")
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildImagePrompt returns the natural-language instruction sent to the
// image model together with the selfie and garment images.
func BuildImagePrompt(garmentLabels []string, pctx PromptContext, extraInstructions ...string) string {
	garments := strings.Join(garmentLabels, ", ")
	if garments == "" {
		garments = "matching garments from the wardrobe"
	}
	prompt := "Dress the person in the photo in " + garments + ". " + pctx.Summary() +
		" Use a natural pose and realistic lighting. Keep the person's appearance unchanged."
	if extras := strings.Join(extraInstructions, " "); extras != "" {
		prompt += " " + extras
	}
	return strings.TrimSpace(prompt)
}
