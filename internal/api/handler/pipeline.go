package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ollie/capvote/internal/api/middleware"
	"github.com/ollie/capvote/internal/pipeline"
	"github.com/ollie/capvote/internal/service"
)

// PipelineHandler proxies the three caption-pipeline operations. The backend
// decides whether they run upstream or locally; either way the response
// payload and upstream error detail pass through verbatim.
type PipelineHandler struct {
	backend service.PipelineBackend
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(backend service.PipelineBackend) *PipelineHandler {
	return &PipelineHandler{backend: backend}
}

// PresignRequest is the body of POST /api/pipeline/generate-presigned-url.
type PresignRequest struct {
	ContentType string `json:"contentType"`
}

// GeneratePresignedURL validates the content type against the allow-list
// before anything touches the network.
func (h *PipelineHandler) GeneratePresignedURL(c *gin.Context) {
	var req PresignRequest
	_ = c.ShouldBindJSON(&req)

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if contentType == "" || !pipeline.SupportedContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported or missing image contentType.",
		})
		return
	}

	data, err := h.backend.GeneratePresignedURL(c.Request.Context(), middleware.BearerToken(c), contentType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// RegisterRequest is the body of POST /api/pipeline/upload-image-from-url.
type RegisterRequest struct {
	ImageURL    string `json:"imageUrl"`
	IsCommonUse bool   `json:"isCommonUse"`
}

// RegisterImage registers an uploaded image's retrieval URL with the pipeline.
func (h *PipelineHandler) RegisterImage(c *gin.Context) {
	var req RegisterRequest
	_ = c.ShouldBindJSON(&req)

	if req.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing imageUrl.",
		})
		return
	}

	data, err := h.backend.RegisterImage(c.Request.Context(), middleware.BearerToken(c), req.ImageURL, req.IsCommonUse)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// CaptionsRequest is the body of POST /api/pipeline/generate-captions.
type CaptionsRequest struct {
	ImageID string `json:"imageId"`
}

// GenerateCaptions requests caption generation for a registered image.
func (h *PipelineHandler) GenerateCaptions(c *gin.Context) {
	var req CaptionsRequest
	_ = c.ShouldBindJSON(&req)

	if req.ImageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing imageId.",
		})
		return
	}

	data, err := h.backend.GenerateCaptions(c.Request.Context(), middleware.BearerToken(c), req.ImageID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *PipelineHandler) writeError(c *gin.Context, err error) {
	var upstream *service.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(upstream.Status, gin.H{
			"error":   "Pipeline request failed.",
			"details": upstream.Detail,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Pipeline request failed.",
	})
}
