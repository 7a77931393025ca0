package aitunnel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	c.ImageModel = "test-image-model"
	c.FetchImage = func(ctx context.Context, ref string) ([]byte, error) {
		return []byte("raw-image-bytes"), nil
	}
	return c, srv
}

func sampleRequest() ImageRequest {
	return ImageRequest{
		SelfieRef: "https://cdn.test/selfie.jpg",
		Garments: []GarmentImage{
			{Ref: "https://cdn.test/t1.jpg", Label: "white tee"},
			{Ref: "https://cdn.test/b1.jpg", Label: "blue jeans"},
		},
		Instructions: "Dress the person in the photo.",
		Size:         "1024x1536",
		Quality:      "high",
	}
}

func TestGenerateOutfitImageEditSucceeds(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("final-image"))
	var edits, generations int
	c, _ := testImageClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/edits":
			edits++
			require.NoError(t, r.ParseMultipartForm(32<<20))
			assert.Equal(t, "test-image-model", r.FormValue("model"))
			assert.Equal(t, "1024x1536", r.FormValue("size"))
			assert.Len(t, r.MultipartForm.File["image[]"], 3) // selfie + two garments
			w.Write([]byte(`{"data":[{"b64_json":"` + b64 + `"}]}`))
		case "/images/generations":
			generations++
			t.Error("text-to-image fallback must not run when the edit succeeds")
		}
	})

	result, err := c.GenerateOutfitImage(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte("final-image"), result.ImageBytes)
	assert.Equal(t, "Dress the person in the photo.", result.PromptUsed)
	assert.Equal(t, 1, edits)
	assert.Equal(t, 0, generations)
}

// A 400 naming an unusable image input triggers exactly one text-to-image
// retry whose prompt lists the garment labels.
func TestGenerateOutfitImageFallsBackOnInvalidImage(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("fallback-image"))
	var generations int
	var fallbackBody struct {
		Prompt string `json:"prompt"`
	}
	c, _ := testImageClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/edits":
			http.Error(w, `{"error":{"message":"no valid image provided"}}`, http.StatusBadRequest)
		case "/images/generations":
			generations++
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fallbackBody))
			w.Write([]byte(`{"data":[{"b64_json":"` + b64 + `"}]}`))
		}
	})

	result, err := c.GenerateOutfitImage(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte("fallback-image"), result.ImageBytes)
	assert.Equal(t, 1, generations)
	assert.Contains(t, fallbackBody.Prompt, "white tee, blue jeans")
	assert.Contains(t, result.PromptUsed, "white tee, blue jeans")
}

func TestGenerateOutfitImageOtherErrorPropagates(t *testing.T) {
	var generations int
	c, _ := testImageClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/edits":
			http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
		case "/images/generations":
			generations++
		}
	})

	_, err := c.GenerateOutfitImage(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, 0, generations, "non-image-input errors must not trigger the fallback")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
}

// "no images were generated" is an expected outcome, not an error: the caller
// gets a structured result with the error code set.
func TestGenerateOutfitImageNoImagesGenerated(t *testing.T) {
	c, _ := testImageClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"no_images_generated","message":"No images were generated"}}`, http.StatusBadRequest)
	})

	result, err := c.GenerateOutfitImage(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Nil(t, result.ImageBytes)
	assert.Empty(t, result.ImageURL)
	assert.Equal(t, ErrCodeNoImagesGenerated, result.ErrorCode)
}

func TestNormalizeImageResponseShapes(t *testing.T) {
	t.Run("data url", func(t *testing.T) {
		result, err := normalizeImageResponse([]byte(`{"data":[{"url":"https://img.test/out.png"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/out.png", result.ImageURL)
		assert.Nil(t, result.ImageBytes)
	})

	t.Run("chat message images list", func(t *testing.T) {
		result, err := normalizeImageResponse([]byte(
			`{"choices":[{"message":{"content":"","images":[{"type":"image_url","image_url":{"url":"https://img.test/chat.png"}}]}}]}`))
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/chat.png", result.ImageURL)
	})

	t.Run("data url in message content", func(t *testing.T) {
		b64 := base64.StdEncoding.EncodeToString([]byte("inline"))
		result, err := normalizeImageResponse([]byte(
			`{"choices":[{"message":{"content":"data:image/png;base64,` + b64 + `"}}]}`))
		require.NoError(t, err)
		assert.Equal(t, []byte("inline"), result.ImageBytes)
	})

	t.Run("image_url content part", func(t *testing.T) {
		result, err := normalizeImageResponse([]byte(
			`{"choices":[{"message":{"content":[{"type":"image_url","image_url":{"url":"https://img.test/part.png"}}]}}]}`))
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/part.png", result.ImageURL)
	})

	t.Run("no images generated in 200 body", func(t *testing.T) {
		result, err := normalizeImageResponse([]byte(`{"error":{"code":"no_images_generated"}}`))
		require.NoError(t, err)
		assert.Equal(t, ErrCodeNoImagesGenerated, result.ErrorCode)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := normalizeImageResponse([]byte(`{}`))
		assert.ErrorIs(t, err, ErrNoImagePayload)
	})
}

// A data URL with broken base64 keeps the URL reference instead of failing.
func TestResultFromURLKeepsUndecodableDataURL(t *testing.T) {
	result := resultFromURL("data:image/png;base64,@@not-base64@@")
	assert.Nil(t, result.ImageBytes)
	assert.Equal(t, "data:image/png;base64,@@not-base64@@", result.ImageURL)
}

func TestEnsurePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	assert.Equal(t, pngBuf.Bytes(), ensurePNG(pngBuf.Bytes()), "png input passes through")

	var jpegBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpegBuf, img, nil))
	converted := ensurePNG(jpegBuf.Bytes())
	_, format, err := image.Decode(bytes.NewReader(converted))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	garbage := []byte("not an image")
	assert.Equal(t, garbage, ensurePNG(garbage), "undecodable bytes pass through")
}
