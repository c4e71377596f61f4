package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ollie/capvote/internal/api/middleware"
	"github.com/ollie/capvote/internal/domain"
	"github.com/ollie/capvote/internal/service"
)

// VoteSubmitter is the slice of the vote service the handler needs.
type VoteSubmitter interface {
	SubmitVote(ctx context.Context, userID, captionID string, voteType domain.VoteType) (*service.VoteResult, error)
}

// VoteHandler handles vote submission.
type VoteHandler struct {
	votes VoteSubmitter
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(votes VoteSubmitter) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// VoteRequest is the vote submission body.
type VoteRequest struct {
	VoteType string `json:"voteType" binding:"required"`
}

// Submit handles POST /api/v1/captions/:id/vote.
func (h *VoteHandler) Submit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   domain.ErrNotAuthenticated.Error(),
		})
		return
	}

	captionID := c.Param("id")
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.votes.SubmitVote(c.Request.Context(), user.ID, captionID, domain.VoteType(req.VoteType))
	if err != nil {
		status, message := voteErrorResponse(err)
		c.JSON(status, gin.H{
			"success": false,
			"error":   message,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// voteErrorResponse maps the vote error taxonomy to an HTTP status and a
// short human-readable message. Store internals never leak verbatim.
func voteErrorResponse(err error) (int, string) {
	var storeErr *domain.StoreError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, domain.ErrNotAuthenticated.Error()
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, domain.ErrAlreadyVoted.Error()
	case errors.Is(err, domain.ErrInvalidVote):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError, "Could not save vote."
	default:
		return http.StatusInternalServerError, "An error occurred"
	}
}
