package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ollie/capvote/internal/api/middleware"
	"github.com/ollie/capvote/internal/domain"
	"github.com/ollie/capvote/internal/service"
)

// CaptionHandler handles caption gallery endpoints.
type CaptionHandler struct {
	captions *service.CaptionService
	votes    *service.VoteService
}

// NewCaptionHandler creates a new caption handler.
func NewCaptionHandler(captions *service.CaptionService, votes *service.VoteService) *CaptionHandler {
	return &CaptionHandler{captions: captions, votes: votes}
}

// List handles GET /api/v1/captions.
func (h *CaptionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.captions.ListCaptions(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list captions: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/v1/captions/:id. For signed-in callers the response
// includes their current vote so the UI can highlight it.
func (h *CaptionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Caption ID is required",
		})
		return
	}

	caption, err := h.captions.GetCaption(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCaptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Caption not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load caption: " + err.Error(),
		})
		return
	}

	currentVote := ""
	if user, ok := middleware.CurrentUser(c); ok {
		if vote, err := h.votes.CurrentVote(c.Request.Context(), user.ID, id); err == nil {
			currentVote = vote
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"caption":      caption,
		"current_vote": currentVote,
	})
}
