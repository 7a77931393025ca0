// Package aitunnel is a thin client for an OpenAI-compatible provider that
// fronts both chat-completion and image models. It owns the request/response
// contract of the stylist's two remote calls: outfit recommendation and
// outfit image generation.
package aitunnel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// RequestError is returned when the provider answers with a non-2xx status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("aitunnel returned status %d: %s", e.StatusCode, e.Body)
}

// IsQuotaError reports whether the error looks like a rate/quota rejection.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// Client talks to the AITunnel OpenAI-compatible endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	ChatModel  string
	ImageModel string

	// FetchImage resolves an image reference (presigned URL or local path)
	// to raw bytes. Overridable in tests.
	FetchImage func(ctx context.Context, ref string) ([]byte, error)
}

// NewClient creates a client with the given base URL, key, and per-request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	c.FetchImage = c.fetchImage
	return c
}

// ChatMessage is one message of a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatImage struct {
	Type     string       `json:"type,omitempty"`
	ImageURL chatImageURL `json:"image_url"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

// ResponseMessage is a chat-completion message whose content may be a plain
// string or a list of typed parts, and which may carry an images list.
type ResponseMessage struct {
	Content json.RawMessage `json:"content"`
	Images  []chatImage     `json:"images,omitempty"`
}

// ContentText returns the message content when it is a plain JSON string.
func (m *ResponseMessage) ContentText() string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}
	return ""
}

func (m *ResponseMessage) contentParts() []contentPart {
	var parts []contentPart
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return nil
	}
	return parts
}

type chatChoice struct {
	Message ResponseMessage `json:"message"`
}

// ChatResponse is the decoded body of a chat-completion call.
type ChatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// FirstContent returns the text content of the first choice.
func (r *ChatResponse) FirstContent() (string, bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	return r.Choices[0].Message.ContentText(), true
}

// ChatCompletion calls the chat completions endpoint. Extra options
// (e.g. response_format) are merged into the payload.
func (c *Client) ChatCompletion(ctx context.Context, messages []ChatMessage, extra map[string]interface{}) (*ChatResponse, error) {
	payload := map[string]interface{}{
		"model":    c.ChatModel,
		"messages": messages,
	}
	for k, v := range extra {
		payload[k] = v
	}

	body, err := c.postJSON(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &resp, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, endpoint string, form func(w *multipart.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := form(writer); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aitunnel request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read aitunnel response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *Client) fetchImage(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http") {
		return os.ReadFile(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
