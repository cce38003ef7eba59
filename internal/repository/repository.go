package repository

import (
	"context"
	"errors"

	"github.com/comment-zero-api/internal/config"
	"github.com/comment-zero-api/internal/database"
	"github.com/comment-zero-api/internal/models"
	"github.com/rs/zerolog"
)

// Expected save rejections. Anything else returned by a repository is a
// store fault and aborts the request.
var (
	// ErrContainerNotFound means the addressed container does not exist
	// and could not be provisioned.
	ErrContainerNotFound = errors.New("container not found")

	// ErrContainerClosed means the container exists but has comments
	// disabled.
	ErrContainerClosed = errors.New("container does not accept comments")
)

// CommentRepository defines the interface for comment data operations.
// Fetch streams matching comments to fn one row at a time, newest first,
// approved rows only (additionally unbaked rows only when unbakedOnly is
// set); the full result set is never materialized.
type CommentRepository interface {
	Fetch(ctx context.Context, containerID int64, moniker string, unbakedOnly bool, fn func(*models.Comment) error) error
	Save(ctx context.Context, draft *models.CommentDraft) (*models.Comment, error)
	Bake(ctx context.Context, containerID int64) error
}

// New creates the comment repository variant selected by configuration
func New(db *database.DB, cfg *config.CommentsConfig, log zerolog.Logger) CommentRepository {
	if cfg.Variant == config.VariantDirect {
		return NewDirectRepo(db, cfg.EnforceOpenGate, log)
	}
	return NewMonikerRepo(db, cfg.EnforceOpenGate, log)
}

// fetchColumns is the projection shared by both variants' Fetch queries
const fetchColumns = "c.id, c.container_id, c.author, c.content, c.created_at, c.website"

// streamComments scans query rows into Comment values and hands each to fn
func streamComments(ctx context.Context, db *database.DB, query string, arg interface{}, fn func(*models.Comment) error) error {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID, &comment.ContainerID, &comment.Author,
			&comment.Content, &comment.CreatedAt, &comment.Website,
		)
		if err != nil {
			return err
		}
		comment.Approved = true

		if err := fn(&comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

// insertComment persists a draft against its resolved container and returns
// the stored comment with its assigned id. Comments are approved on save
// (moderation is out of scope) and start unbaked.
func insertComment(ctx context.Context, db *database.DB, draft *models.CommentDraft, containerID int64) (*models.Comment, error) {
	query := `
		INSERT INTO comments (container_id, author, email, website, content, author_ip, created_at, approved, baked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, FALSE)
		RETURNING id
	`

	comment := &models.Comment{
		ContainerID: containerID,
		Author:      draft.Author,
		Email:       draft.Email,
		Website:     draft.Website,
		Content:     draft.Content,
		AuthorIP:    draft.AuthorIP,
		CreatedAt:   draft.CreatedAt,
		Approved:    true,
		Baked:       false,
	}

	err := db.QueryRowContext(ctx, query,
		containerID, draft.Author, draft.Email, draft.Website,
		draft.Content, draft.AuthorIP, draft.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// bakeComments marks every approved comment under the container as baked.
// Idempotent; re-baking an already-baked container changes nothing.
func bakeComments(ctx context.Context, db *database.DB, containerID int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE comments SET baked = TRUE WHERE container_id = $1 AND approved = TRUE",
		containerID,
	)
	return err
}
