package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemotePipeline forwards pipeline operations to the upstream captioning API,
// attaching the caller's bearer token and passing status codes and error
// detail through verbatim.
type RemotePipeline struct {
	client *resty.Client
	base   string
}

// NewRemotePipeline creates a remote pipeline backend for the given upstream
// base URL.
func NewRemotePipeline(baseURL string, timeout time.Duration) *RemotePipeline {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)
	return &RemotePipeline{
		client: client,
		base:   strings.TrimSuffix(baseURL, "/"),
	}
}

func (p *RemotePipeline) GeneratePresignedURL(ctx context.Context, token, contentType string) (json.RawMessage, error) {
	return p.post(ctx, token, "/api/pipeline/generate-presigned-url",
		map[string]interface{}{"contentType": contentType})
}

func (p *RemotePipeline) RegisterImage(ctx context.Context, token, imageURL string, isCommonUse bool) (json.RawMessage, error) {
	return p.post(ctx, token, "/api/pipeline/upload-image-from-url",
		map[string]interface{}{"imageUrl": imageURL, "isCommonUse": isCommonUse})
}

func (p *RemotePipeline) GenerateCaptions(ctx context.Context, token, imageID string) (json.RawMessage, error) {
	return p.post(ctx, token, "/api/pipeline/generate-captions",
		map[string]interface{}{"imageId": imageID})
}

// post forwards a JSON body upstream. Non-success responses become
// UpstreamError carrying the upstream status and its error/message detail
// (falling back to the raw body). Non-JSON success bodies are re-encoded as
// JSON strings so callers always receive valid JSON.
func (p *RemotePipeline) post(ctx context.Context, token, path string, body interface{}) (json.RawMessage, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(p.base + path)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusBadGateway, Detail: err.Error()}
	}

	raw := resp.Body()
	if len(raw) == 0 {
		if resp.IsSuccess() {
			return json.RawMessage("null"), nil
		}
		return nil, &UpstreamError{
			Status: resp.StatusCode(),
			Detail: fmt.Sprintf("HTTP %d", resp.StatusCode()),
		}
	}

	if !resp.IsSuccess() {
		detail := string(raw)
		var parsed struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			if parsed.Error != "" {
				detail = parsed.Error
			} else if parsed.Message != "" {
				detail = parsed.Message
			}
		}
		return nil, &UpstreamError{Status: resp.StatusCode(), Detail: detail}
	}

	if json.Valid(raw) {
		return json.RawMessage(raw), nil
	}
	quoted, _ := json.Marshal(string(raw))
	return json.RawMessage(quoted), nil
}
