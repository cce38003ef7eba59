package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/comment-zero-api/internal/models"
	"github.com/comment-zero-api/internal/render"
	"github.com/comment-zero-api/internal/repository"
	"github.com/comment-zero-api/internal/throttle"
	"github.com/comment-zero-api/internal/validation"
	"github.com/rs/zerolog"
)

// throttleAction keys write attempts in the limiter window
const throttleAction = "submit-comment"

// commentService is the concrete implementation of CommentService
type commentService struct {
	repo       repository.CommentRepository
	limiter    throttle.Limiter
	renderer   render.Renderer
	recentOnly bool
	log        zerolog.Logger
}

// NewCommentService creates a comment service. recentOnly restricts reads
// to comments not yet baked into a static build; it also suppresses the
// bake side effect of reads.
func NewCommentService(repo repository.CommentRepository, limiter throttle.Limiter, renderer render.Renderer, recentOnly bool, log zerolog.Logger) CommentService {
	return &commentService{
		repo:       repo,
		limiter:    limiter,
		renderer:   renderer,
		recentOnly: recentOnly,
		log:        log.With().Str("component", "comment_service").Logger(),
	}
}

// ReadComments fetches the container's approved comments and assembles the
// JSON document. Full reads additionally bake what they returned, so the
// next incremental rebuild skips those comments; the response the caller
// sees is unaffected by the transition.
func (s *commentService) ReadComments(ctx context.Context, containerID int64, moniker string) ([]byte, error) {
	var buf bytes.Buffer
	asm := NewAssembler(&buf, s.renderer)

	if err := s.repo.Fetch(ctx, containerID, moniker, s.recentOnly, asm.Add); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if err := asm.Close(); err != nil {
		return nil, err
	}

	if resolved := asm.ContainerID(); !s.recentOnly && resolved != 0 {
		if err := s.repo.Bake(ctx, resolved); err != nil {
			return nil, fmt.Errorf("bake failed: %w", err)
		}
		s.log.Debug().Int64("container_id", resolved).Msg("Comments baked")
	}

	return buf.Bytes(), nil
}

// PostComment runs the write pipeline: validate, throttle, save. Each stage
// short-circuits; a throttled or invalid draft never reaches the store.
func (s *commentService) PostComment(ctx context.Context, sessionID string, draft *models.CommentDraft) (*models.Comment, error) {
	if fieldErr := validation.ValidateDraft(draft); fieldErr != nil {
		return nil, fieldErr
	}

	if wait := s.limiter.Allow(sessionID, throttleAction); wait > 0 {
		return nil, &throttle.ThrottledError{Action: "comment", Wait: wait}
	}

	comment, err := s.repo.Save(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("comment_id", comment.ID).
		Int64("container_id", comment.ContainerID).
		Msg("Comment saved")

	return comment, nil
}
