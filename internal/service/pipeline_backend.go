package service

import (
	"context"
	"encoding/json"
	"fmt"
)

// PipelineBackend serves the three caption-pipeline operations behind the
// proxy endpoints. Implementations return the response payload verbatim so
// handlers can pass it through unchanged.
type PipelineBackend interface {
	GeneratePresignedURL(ctx context.Context, token, contentType string) (json.RawMessage, error)
	RegisterImage(ctx context.Context, token, imageURL string, isCommonUse bool) (json.RawMessage, error)
	GenerateCaptions(ctx context.Context, token, imageID string) (json.RawMessage, error)
}

// UpstreamError carries an upstream failure's status code and detail so the
// proxy can pass both through verbatim.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("pipeline request failed: HTTP %d: %s", e.Status, e.Detail)
}
