package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comment-zero-api/internal/config"
	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/repository"
	"github.com/comment-zero-api/internal/service"
	"github.com/comment-zero-api/internal/throttle"
	"github.com/comment-zero-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sessionCookie identifies a commenter for throttling purposes
const sessionCookie = "czsid"

// CommentHandler handles the comments endpoint
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "comments").Logger(),
	}
}

// GetComments handles GET /comments?pid=&mid=
// A zero or absent pid means "resolve by moniker".
func (h *CommentHandler) GetComments(c *gin.Context) {
	ctx := c.Request.Context()

	containerID := parseNumeric(c.Query("pid"))
	moniker := strings.TrimSpace(c.Query("mid"))

	doc, err := h.services.Comment.ReadComments(ctx, containerID, moniker)
	if err != nil {
		h.log.Error().Err(err).
			Int64("pid", containerID).
			Str("mid", moniker).
			Msg("Failed to read comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Data(http.StatusOK, "application/json", doc)
}

// PostComment handles POST /comments with form fields postid, moniker,
// author, email, website, content
func (h *CommentHandler) PostComment(c *gin.Context) {
	ctx := c.Request.Context()

	// Timestamp and IP are captured server-side; client-supplied values
	// are never trusted.
	draft := &models.CommentDraft{
		ContainerID: parseNumeric(c.PostForm("postid")),
		Moniker:     strings.TrimSpace(c.PostForm("moniker")),
		Author:      strings.TrimSpace(c.PostForm("author")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Website:     strings.TrimSpace(c.PostForm("website")),
		Content:     c.PostForm("content"),
		AuthorIP:    c.ClientIP(),
		CreatedAt:   time.Now().UTC(),
	}

	comment, err := h.services.Comment.PostComment(ctx, h.sessionID(c), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// respondError maps pipeline errors onto the wire. Validation and throttle
// rejections are expected outcomes; repository faults are logged and
// answered with a fixed body so backend diagnostics never reach the client.
func (h *CommentHandler) respondError(c *gin.Context, err error) {
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"field":  fieldErr.Field,
			"error":  fieldErr.Message,
			"status": "error",
		})
		return
	}

	var throttled *throttle.ThrottledError
	if errors.As(err, &throttled) {
		wait := fmt.Sprintf("%d seconds", int(throttled.Wait.Seconds()+0.5))
		c.JSON(http.StatusBadRequest, gin.H{
			"field":  "comment",
			"error":  validation.ThrottledMessage(throttled.Action, wait),
			"status": "error",
		})
		return
	}

	if errors.Is(err, repository.ErrContainerNotFound) || errors.Is(err, repository.ErrContainerClosed) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "comments cannot be posted to this item",
			"status": "error",
		})
		return
	}

	h.log.Error().Err(err).Msg("Failed to save comment")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// sessionID returns the commenter's session cookie, minting one on first
// contact so the throttle window can attach to something stable
func (h *CommentHandler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		return sid
	}
	sid := uuid.New().String()
	c.SetCookie(sessionCookie, sid, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	return sid
}

// parseNumeric extracts a positive integer from a form value, treating
// anything unparseable as absent
func parseNumeric(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
