package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned when a run is requested while another is in flight.
// Callers treat it as a no-op rather than a failure.
var ErrBusy = errors.New("a pipeline run is already in progress")

// supportedContentTypes is the fixed allow-list of image content types the
// pipeline accepts.
var supportedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
}

// SupportedContentType reports whether ct (case-insensitive) is accepted.
func SupportedContentType(ct string) bool {
	_, ok := supportedContentTypes[normalizeContentType(ct)]
	return ok
}

func normalizeContentType(ct string) string {
	return strings.ToLower(strings.TrimSpace(ct))
}

// UnsupportedContentTypeError reports a file type outside the allow-list.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (e *UnsupportedContentTypeError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "unknown"
	}
	return fmt.Sprintf("unsupported file type: %s", ct)
}

// MalformedResponseError reports a pipeline response missing a required field.
type MalformedResponseError struct {
	Missing string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("missing %s from pipeline response", e.Missing)
}

// UploadStatusError reports a non-success status from the raw byte upload.
type UploadStatusError struct {
	Status int
}

func (e *UploadStatusError) Error() string {
	return fmt.Sprintf("image upload failed with status %d", e.Status)
}

// InvalidTransitionError reports an event applied in the wrong stage.
type InvalidTransitionError struct {
	From  Stage
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid pipeline transition from stage %q on %T", e.From, e.Event)
}
