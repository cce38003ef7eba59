package repository

import (
	"context"
	"database/sql"

	"github.com/comment-zero-api/internal/database"
	"github.com/comment-zero-api/internal/models"
	"github.com/rs/zerolog"
)

// directRepo addresses containers by numeric id only. Used when the
// publishing system assigns ids upfront; monikers are ignored entirely.
type directRepo struct {
	db              *database.DB
	enforceOpenGate bool
	log             zerolog.Logger
}

// NewDirectRepo creates the id-only comment repository variant
func NewDirectRepo(db *database.DB, enforceOpenGate bool, log zerolog.Logger) CommentRepository {
	return &directRepo{
		db:              db,
		enforceOpenGate: enforceOpenGate,
		log:             log.With().Str("component", "repository").Str("variant", "direct").Logger(),
	}
}

// Fetch streams approved comments for the container, newest first
func (r *directRepo) Fetch(ctx context.Context, containerID int64, _ string, unbakedOnly bool, fn func(*models.Comment) error) error {
	query := `
		SELECT ` + fetchColumns + `
		FROM comments c
		WHERE c.container_id = $1 AND c.approved = TRUE`
	if unbakedOnly {
		query += " AND c.baked = FALSE"
	}
	query += " ORDER BY c.created_at DESC"

	return streamComments(ctx, r.db, query, containerID, fn)
}

// Save persists a draft against an existing container. The container must
// exist and, when the open gate is enforced, must have comments enabled.
func (r *directRepo) Save(ctx context.Context, draft *models.CommentDraft) (*models.Comment, error) {
	var container models.Container
	err := r.db.QueryRowContext(ctx,
		"SELECT id, allow_comments FROM containers WHERE id = $1",
		draft.ContainerID,
	).Scan(&container.ID, &container.AllowComments)
	if err == sql.ErrNoRows {
		return nil, ErrContainerNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.enforceOpenGate && !container.AllowComments {
		return nil, ErrContainerClosed
	}

	return insertComment(ctx, r.db, draft, container.ID)
}

// Bake marks every approved comment under the container as baked
func (r *directRepo) Bake(ctx context.Context, containerID int64) error {
	return bakeComments(ctx, r.db, containerID)
}
