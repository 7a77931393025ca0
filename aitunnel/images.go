package aitunnel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
)

// ErrNoImagePayload is returned when a 2xx image response carried nothing
// the normalizer recognises.
var ErrNoImagePayload = errors.New("image response contained no image payload")

// ErrCodeNoImagesGenerated marks the expected-empty result: the provider
// accepted the request but produced no image.
const ErrCodeNoImagesGenerated = "no_images_generated"

// GarmentImage is one garment input for image generation.
type GarmentImage struct {
	Ref   string // presigned URL or local path
	Label string
}

// ImageRequest describes one outfit image generation.
type ImageRequest struct {
	SelfieRef    string
	Garments     []GarmentImage
	Instructions string
	Size         string
	Quality      string
	Moderation   string
}

// ImageResult is the normalized outcome of an image call. At most one of
// ImageBytes / ImageURL is set; a nil image with ErrorCode set is a valid,
// expected outcome the caller must handle.
type ImageResult struct {
	ImageBytes []byte
	ImageURL   string
	ErrorCode  string
	PromptUsed string
}

// GenerateOutfitImage renders the selfie wearing the selected garments.
//
// It first attempts an image edit with the selfie and garment images as
// direct inputs. When the provider rejects that call specifically because no
// image input was usable, it retries once as a pure text-to-image generation
// with a prompt listing the garment labels. Any other rejection propagates.
func (c *Client) GenerateOutfitImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	result, err := c.editImages(ctx, req)
	if err == nil {
		result.PromptUsed = req.Instructions
		return result, nil
	}
	if !isNoValidImageErr(err) {
		if isNoImagesGeneratedErr(err) {
			return &ImageResult{ErrorCode: ErrCodeNoImagesGenerated, PromptUsed: req.Instructions}, nil
		}
		return nil, err
	}

	prompt := fallbackPrompt(req)
	result, err = c.generateFromText(ctx, prompt, req)
	if err != nil {
		if isNoImagesGeneratedErr(err) {
			return &ImageResult{ErrorCode: ErrCodeNoImagesGenerated, PromptUsed: prompt}, nil
		}
		return nil, err
	}
	result.PromptUsed = prompt
	return result, nil
}

func (c *Client) editImages(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	selfie, err := c.FetchImage(ctx, req.SelfieRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch selfie image: %w", err)
	}

	type imageFile struct {
		name string
		data []byte
	}
	files := []imageFile{{"selfie.png", ensurePNG(selfie)}}
	for i, garment := range req.Garments {
		data, err := c.FetchImage(ctx, garment.Ref)
		if err != nil {
			// A garment that cannot be fetched is skipped, not fatal.
			continue
		}
		files = append(files, imageFile{fmt.Sprintf("garment_%d.png", i+1), ensurePNG(data)})
	}

	body, err := c.postMultipart(ctx, "/images/edits", func(w *multipart.Writer) error {
		fields := map[string]string{
			"model":      c.ImageModel,
			"prompt":     req.Instructions,
			"size":       req.Size,
			"quality":    req.Quality,
			"moderation": req.Moderation,
		}
		for key, value := range fields {
			if value == "" {
				continue
			}
			if err := w.WriteField(key, value); err != nil {
				return err
			}
		}
		for _, f := range files {
			part, err := w.CreateFormFile("image[]", f.name)
			if err != nil {
				return err
			}
			if _, err := part.Write(f.data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return normalizeImageResponse(body)
}

func (c *Client) generateFromText(ctx context.Context, prompt string, req ImageRequest) (*ImageResult, error) {
	payload := map[string]interface{}{
		"model":  c.ImageModel,
		"prompt": prompt,
	}
	if req.Size != "" {
		payload["size"] = req.Size
	}
	if req.Quality != "" {
		payload["quality"] = req.Quality
	}
	if req.Moderation != "" {
		payload["moderation"] = req.Moderation
	}

	body, err := c.postJSON(ctx, "/images/generations", payload)
	if err != nil {
		return nil, err
	}
	return normalizeImageResponse(body)
}

// fallbackPrompt builds the text-only prompt used when image-conditioned
// editing was rejected.
func fallbackPrompt(req ImageRequest) string {
	var labels []string
	for _, g := range req.Garments {
		if g.Label != "" {
			labels = append(labels, g.Label)
		}
	}
	outfit := strings.Join(labels, ", ")
	if outfit == "" {
		outfit = "a matching outfit from the wardrobe"
	}
	prompt := fmt.Sprintf("A full-body photo of a person wearing %s. %s", outfit, req.Instructions)
	return strings.TrimSpace(prompt)
}

type imageDatum struct {
	B64JSON string `json:"b64_json"`
	URL     string `json:"url"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type imageResponse struct {
	Data    []imageDatum `json:"data"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error"`
}

// normalizeImageResponse reduces the provider's response shapes to one
// ImageResult. Shapes are tried in priority order: data array with inline
// base64, data array with a hosted URL, then a chat-completion-style message
// carrying the image in its images list or content.
func normalizeImageResponse(body []byte) (*ImageResult, error) {
	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}

	if len(resp.Data) > 0 {
		datum := resp.Data[0]
		if datum.B64JSON != "" {
			decoded, err := base64.StdEncoding.DecodeString(datum.B64JSON)
			if err == nil {
				return &ImageResult{ImageBytes: decoded}, nil
			}
		}
		if datum.URL != "" {
			return resultFromURL(datum.URL), nil
		}
	}

	if len(resp.Choices) > 0 {
		if url := extractMessageImageURL(&resp.Choices[0].Message); url != "" {
			return resultFromURL(url), nil
		}
	}

	if resp.Error != nil && (resp.Error.Code == ErrCodeNoImagesGenerated ||
		strings.Contains(strings.ToLower(resp.Error.Message), "no images were generated")) {
		return &ImageResult{ErrorCode: ErrCodeNoImagesGenerated}, nil
	}

	return nil, ErrNoImagePayload
}

// extractMessageImageURL digs an image URL (or data URL) out of a
// chat-shaped message.
func extractMessageImageURL(msg *ResponseMessage) string {
	if len(msg.Images) > 0 && msg.Images[0].ImageURL.URL != "" {
		return msg.Images[0].ImageURL.URL
	}

	if content := msg.ContentText(); strings.HasPrefix(content, "data:") {
		return content
	}

	for _, part := range msg.contentParts() {
		if part.Type == "image_url" && part.ImageURL != nil && part.ImageURL.URL != "" {
			return part.ImageURL.URL
		}
	}
	return ""
}

// resultFromURL decodes data URLs into bytes, keeping the original string
// as a fallback reference when decoding fails.
func resultFromURL(url string) *ImageResult {
	if strings.HasPrefix(url, "data:") {
		if idx := strings.Index(url, ","); idx >= 0 {
			decoded, err := base64.StdEncoding.DecodeString(url[idx+1:])
			if err == nil {
				return &ImageResult{ImageBytes: decoded}
			}
		}
		return &ImageResult{ImageURL: url}
	}
	return &ImageResult{ImageURL: url}
}

// ensurePNG re-encodes the image as PNG when it is in another format.
// Bytes that cannot be decoded are passed through unchanged and left for
// the provider to reject.
func ensurePNG(data []byte) []byte {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || format == "png" {
		return data
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return data
	}
	return buf.Bytes()
}

func isNoValidImageErr(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 400 {
		return false
	}
	body := strings.ToLower(reqErr.Body)
	return strings.Contains(body, "no valid image") || strings.Contains(body, "invalid_image")
}

func isNoImagesGeneratedErr(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	body := strings.ToLower(reqErr.Body)
	return strings.Contains(body, ErrCodeNoImagesGenerated) || strings.Contains(body, "no images were generated")
}
