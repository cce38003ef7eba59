package service

import (
	"context"

	"github.com/comment-zero-api/internal/config"
	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/render"
	"github.com/comment-zero-api/internal/repository"
	"github.com/comment-zero-api/internal/throttle"
	"github.com/rs/zerolog"
)

// CommentService defines the read and write pipelines over the comment
// repository
type CommentService interface {
	// ReadComments fetches and assembles the comment document for a
	// container addressed by id or moniker. Returns the document bytes.
	ReadComments(ctx context.Context, containerID int64, moniker string) ([]byte, error)

	// PostComment validates, throttles and persists an inbound draft.
	// Expected rejections come back as *validation.FieldError,
	// *throttle.ThrottledError, or the repository's sentinel errors.
	PostComment(ctx context.Context, sessionID string, draft *models.CommentDraft) (*models.Comment, error)
}

// Services holds all service interfaces
type Services struct {
	Comment CommentService
}

// NewServices creates all services with their dependencies
func NewServices(repo repository.CommentRepository, cfg *config.Config, log zerolog.Logger) *Services {
	limiter := throttle.NewWindowLimiter(cfg.Comments.ThrottlePasses, cfg.Comments.ThrottleInterval)
	renderer := render.NewMarkdownRenderer()

	return &Services{
		Comment: NewCommentService(repo, limiter, renderer, cfg.Comments.RecentOnly, log),
	}
}
