// Package vision labels garment photos with a short human-readable
// description using Gemini's multimodal API.
package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const labelPrompt = "Describe this garment in at most five words: color, then garment type " +
	"(e.g. \"light blue denim jacket\"). Answer with the description only, no punctuation."

// Labeler produces short labels for garment images.
type Labeler struct {
	apiKey string
	model  string
}

// NewLabeler creates a labeler using the given Gemini API key and model.
func NewLabeler(apiKey, model string) *Labeler {
	return &Labeler{apiKey: apiKey, model: model}
}

// LabelGarment returns a short label for the garment on the image.
func (l *Labeler) LabelGarment(ctx context.Context, imageData []byte) (string, error) {
	if l.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(l.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(l.model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(labelPrompt),
		genai.ImageData("jpeg", imageData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to label garment: %v", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no label generated")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			label := strings.TrimSpace(string(text))
			label = strings.Trim(label, ".\"")
			if len(label) > 80 {
				label = label[:80]
			}
			if label != "" {
				return label, nil
			}
		}
	}
	return "", fmt.Errorf("no label generated")
}
