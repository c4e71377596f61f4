package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const totalSteps = 4

// ProgressFunc observes a run; it is called exactly once before each network
// call so an observer can render "Step N/4" without polling.
type ProgressFunc func(step, total int, message string)

// Config holds configuration for the pipeline client.
type Config struct {
	BaseURL    string // server origin hosting the /api/pipeline endpoints
	Token      string // bearer token for the pipeline API calls
	Timeout    time.Duration
	OnProgress ProgressFunc
}

// Client drives the four-step caption-generation flow: presigned URL, raw
// byte upload, asset registration, caption generation. One run at a time;
// the four calls are strictly sequential, each consuming the prior's output.
type Client struct {
	api      *resty.Client
	raw      *resty.Client
	base     string
	busy     atomic.Bool
	progress ProgressFunc
}

// New creates a pipeline client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	api := resty.New()
	api.SetTimeout(timeout)
	api.SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		api.SetHeader("Authorization", "Bearer "+cfg.Token)
	}

	// The presigned PUT carries its authorization in the URL; it must not
	// inherit the API bearer header.
	raw := resty.New()
	raw.SetTimeout(timeout)

	progress := cfg.OnProgress
	if progress == nil {
		progress = func(int, int, string) {}
	}

	return &Client{
		api:      api,
		raw:      raw,
		base:     strings.TrimSuffix(cfg.BaseURL, "/"),
		progress: progress,
	}
}

// Result is the terminal output of a successful run. Payload is the verbatim
// caption response; Captions is the best-effort extraction for display.
type Result struct {
	CDNURL   string
	ImageID  string
	Payload  interface{}
	Captions []string
}

// Run executes the pipeline for the given file bytes and declared content
// type. If another run is in flight it returns ErrBusy without side effects.
// Any stage failure aborts the remaining stages; nothing is rolled back.
func (c *Client) Run(ctx context.Context, data []byte, contentType string) (*Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	run := Advance(NewRun(), Started{ContentType: contentType})
	if run.Stage == StageFailed {
		return nil, run.Err
	}

	c.progress(1, totalSteps, "Step 1/4: Generating presigned upload URL...")
	var presigned struct {
		PresignedURL string `json:"presignedUrl"`
		CDNURL       string `json:"cdnUrl"`
	}
	if err := c.postJSON(ctx, "/api/pipeline/generate-presigned-url",
		map[string]interface{}{"contentType": run.ContentType}, &presigned); err != nil {
		return nil, Advance(run, Failed{Err: err}).Err
	}
	run = Advance(run, PresignedIssued{PresignedURL: presigned.PresignedURL, CDNURL: presigned.CDNURL})
	if run.Stage == StageFailed {
		return nil, run.Err
	}

	c.progress(2, totalSteps, "Step 2/4: Uploading image bytes to presigned URL...")
	resp, err := c.raw.R().
		SetContext(ctx).
		SetHeader("Content-Type", run.ContentType).
		SetBody(data).
		Put(run.PresignedURL)
	if err != nil {
		return nil, Advance(run, Failed{Err: fmt.Errorf("image upload failed: %w", err)}).Err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, Advance(run, Failed{Err: &UploadStatusError{Status: resp.StatusCode()}}).Err
	}
	run = Advance(run, Uploaded{})
	if run.Stage == StageFailed {
		return nil, run.Err
	}

	c.progress(3, totalSteps, "Step 3/4: Registering uploaded image in pipeline...")
	var registered struct {
		ImageID string `json:"imageId"`
	}
	if err := c.postJSON(ctx, "/api/pipeline/upload-image-from-url",
		map[string]interface{}{"imageUrl": run.CDNURL, "isCommonUse": false}, &registered); err != nil {
		return nil, Advance(run, Failed{Err: err}).Err
	}
	run = Advance(run, AssetRegistered{ImageID: registered.ImageID})
	if run.Stage == StageFailed {
		return nil, run.Err
	}

	c.progress(4, totalSteps, "Step 4/4: Generating captions...")
	var payload interface{}
	if err := c.postJSON(ctx, "/api/pipeline/generate-captions",
		map[string]interface{}{"imageId": run.ImageID}, &payload); err != nil {
		return nil, Advance(run, Failed{Err: err}).Err
	}
	run = Advance(run, CaptionsGenerated{Payload: payload})
	if run.Stage == StageFailed {
		return nil, run.Err
	}

	return &Result{
		CDNURL:   run.CDNURL,
		ImageID:  run.ImageID,
		Payload:  run.Payload,
		Captions: ExtractCaptions(run.Payload),
	}, nil
}

// postJSON posts body to path and decodes the JSON response into out. Error
// responses prefer the server's details field, then its error field, then a
// generic status message.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.base + path)
	if err != nil {
		return fmt.Errorf("pipeline request failed: %w", err)
	}

	raw := resp.Body()
	if !resp.IsSuccess() {
		var apiErr struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &apiErr)
		}
		switch {
		case apiErr.Details != "":
			return errors.New(apiErr.Details)
		case apiErr.Error != "":
			return errors.New(apiErr.Error)
		default:
			return fmt.Errorf("request failed with status %d", resp.StatusCode())
		}
	}

	if len(raw) == 0 {
		return errors.New("API response was empty")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode pipeline response: %w", err)
	}
	return nil
}
