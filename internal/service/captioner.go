package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const captionerSystemPrompt = `You write short, witty captions for images. ` +
	`Given an image, respond with exactly three caption candidates, one per line, ` +
	`with no numbering and no extra commentary.`

// Captioner generates caption candidates for an image URL using an
// OpenAI-compatible vision model API. Used by the local pipeline backend.
type Captioner struct {
	client   *resty.Client
	model    string
	endpoint string
}

// CaptionerConfig holds configuration for the captioner.
type CaptionerConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewCaptioner creates a captioner client.
func NewCaptioner(cfg *CaptionerConfig) *Captioner {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Captioner{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type chatTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatImageContent struct {
	Type     string       `json:"type"`
	ImageURL chatImageURL `json:"image_url"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// CaptionImageURL generates caption candidates for a publicly reachable
// image URL. Returns one caption per non-empty line of the model output.
func (c *Captioner) CaptionImageURL(ctx context.Context, imageURL string) ([]string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: captionerSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					chatTextContent{Type: "text", Text: "Write captions for this image."},
					chatImageContent{
						Type:     "image_url",
						ImageURL: chatImageURL{URL: imageURL, Detail: "auto"},
					},
				},
			},
		},
		MaxTokens: 300,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call caption model API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("caption model API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("caption model API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from caption model API (status: %d)", httpResp.StatusCode())
	}

	return splitCaptions(resp.Choices[0].Message.Content), nil
}

// splitCaptions turns the model output into individual caption strings.
func splitCaptions(content string) []string {
	var captions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			captions = append(captions, line)
		}
	}
	return captions
}
