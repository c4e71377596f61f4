package service

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ollie/capvote/internal/domain"
	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/repository"
	"github.com/ollie/capvote/internal/storage"
)

// LocalPipeline serves the pipeline operations from this process: presigned
// PUT URLs from object storage, image registration rows in the database, and
// captions from the vision model. Generated captions are persisted so they
// show up in the gallery.
type LocalPipeline struct {
	storage    storage.ObjectStorage
	images     *repository.ImageRepository
	captions   *repository.CaptionRepository
	captioner  *Captioner
	presignTTL time.Duration
	logger     *logger.Logger
}

// NewLocalPipeline creates a local pipeline backend.
func NewLocalPipeline(
	objectStorage storage.ObjectStorage,
	images *repository.ImageRepository,
	captions *repository.CaptionRepository,
	captioner *Captioner,
	presignTTL time.Duration,
	log *logger.Logger,
) *LocalPipeline {
	if presignTTL == 0 {
		presignTTL = 15 * time.Minute
	}
	if log == nil {
		log = logger.Default()
	}
	return &LocalPipeline{
		storage:    objectStorage,
		images:     images,
		captions:   captions,
		captioner:  captioner,
		presignTTL: presignTTL,
		logger:     log,
	}
}

// extensions maps allow-listed content types to storage key suffixes.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

func (p *LocalPipeline) GeneratePresignedURL(ctx context.Context, _ string, contentType string) (json.RawMessage, error) {
	key := uuid.New().String() + extensions[contentType]

	presignedURL, err := p.storage.PresignPut(ctx, key, contentType, p.presignTTL)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Detail: err.Error()}
	}

	return json.Marshal(map[string]string{
		"presignedUrl": presignedURL,
		"cdnUrl":       p.storage.PublicURL(key),
	})
}

func (p *LocalPipeline) RegisterImage(ctx context.Context, _ string, imageURL string, isCommonUse bool) (json.RawMessage, error) {
	// Re-registering the same URL returns the existing ID instead of a
	// duplicate row.
	if existing, err := p.images.GetByURL(ctx, imageURL); err == nil {
		return json.Marshal(map[string]string{"imageId": existing.ID})
	} else if !repository.IsNotFound(err) {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Detail: err.Error()}
	}

	image := &domain.Image{
		ID:          "img_" + uuid.New().String(),
		URL:         imageURL,
		StorageKey:  p.storageKeyFor(imageURL),
		ContentType: contentTypeForKey(imageURL),
		IsCommonUse: isCommonUse,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.images.Create(ctx, image); err != nil {
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Detail: err.Error()}
	}

	logger.FromContext(ctx).WithField("image_id", image.ID).Info("image registered")
	return json.Marshal(map[string]string{"imageId": image.ID})
}

func (p *LocalPipeline) GenerateCaptions(ctx context.Context, _ string, imageID string) (json.RawMessage, error) {
	image, err := p.images.GetByID(ctx, imageID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, &UpstreamError{Status: http.StatusNotFound, Detail: "unknown imageId"}
		}
		return nil, &UpstreamError{Status: http.StatusInternalServerError, Detail: err.Error()}
	}

	generated, err := p.captioner.CaptionImageURL(ctx, image.URL)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusBadGateway, Detail: err.Error()}
	}

	// Persist generated captions; a failed insert degrades the gallery but
	// not the pipeline response.
	for _, text := range generated {
		content := text
		caption := &domain.Caption{
			ID:        uuid.New().String(),
			ImageID:   &image.ID,
			Content:   &content,
			CreatedAt: time.Now().UTC(),
		}
		if err := p.captions.Create(ctx, caption); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("failed to persist generated caption")
		}
	}

	return json.Marshal(map[string]interface{}{"captions": generated})
}

// storageKeyFor recovers the object key from a URL served by our own storage.
// URLs hosted elsewhere (when the caller uploaded out of band) yield no key.
func (p *LocalPipeline) storageKeyFor(imageURL string) string {
	prefix := p.storage.PublicURL("")
	if prefix == "/" || !strings.HasPrefix(imageURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(imageURL, prefix)
}

// contentTypeForKey maps a key or URL extension back to its content type.
func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	}
	return ""
}
