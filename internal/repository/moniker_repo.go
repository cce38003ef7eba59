package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/comment-zero-api/internal/database"
	"github.com/comment-zero-api/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// pq error code for unique constraint violations
const uniqueViolation = "23505"

// monikerRepo resolves containers by numeric id when one is supplied and by
// moniker otherwise, auto-provisioning a container on first reference to an
// unseen moniker. This is the variant used behind static-site build
// pipelines, where content has no database-assigned id at authoring time.
type monikerRepo struct {
	db              *database.DB
	enforceOpenGate bool
	log             zerolog.Logger
}

// NewMonikerRepo creates the moniker-capable comment repository variant
func NewMonikerRepo(db *database.DB, enforceOpenGate bool, log zerolog.Logger) CommentRepository {
	return &monikerRepo{
		db:              db,
		enforceOpenGate: enforceOpenGate,
		log:             log.With().Str("component", "repository").Str("variant", "moniker").Logger(),
	}
}

// Fetch streams approved comments newest first. A non-zero container id
// addresses comments directly; the container join is only paid on the
// moniker path.
func (r *monikerRepo) Fetch(ctx context.Context, containerID int64, moniker string, unbakedOnly bool, fn func(*models.Comment) error) error {
	var query string
	var arg interface{}

	if containerID != 0 {
		query = `
			SELECT ` + fetchColumns + `
			FROM comments c
			WHERE c.container_id = $1 AND c.approved = TRUE`
		arg = containerID
	} else {
		query = `
			SELECT ` + fetchColumns + `
			FROM comments c
			INNER JOIN containers p ON p.id = c.container_id
			WHERE p.moniker = $1 AND c.approved = TRUE`
		arg = moniker
	}
	if unbakedOnly {
		query += " AND c.baked = FALSE"
	}
	query += " ORDER BY c.created_at DESC"

	return streamComments(ctx, r.db, query, arg, fn)
}

// Save persists a draft, resolving the container by id when supplied and by
// moniker otherwise. An unseen moniker provisions a new container.
func (r *monikerRepo) Save(ctx context.Context, draft *models.CommentDraft) (*models.Comment, error) {
	containerID, err := r.resolveContainer(ctx, draft)
	if err != nil {
		return nil, err
	}
	return insertComment(ctx, r.db, draft, containerID)
}

// Bake marks every approved comment under the container as baked
func (r *monikerRepo) Bake(ctx context.Context, containerID int64) error {
	return bakeComments(ctx, r.db, containerID)
}

// resolveContainer returns the numeric id of the container the draft
// addresses, creating one when an unseen moniker is referenced
func (r *monikerRepo) resolveContainer(ctx context.Context, draft *models.CommentDraft) (int64, error) {
	var (
		container models.Container
		err       error
	)

	if draft.ContainerID != 0 {
		err = r.db.QueryRowContext(ctx,
			"SELECT id, allow_comments FROM containers WHERE id = $1",
			draft.ContainerID,
		).Scan(&container.ID, &container.AllowComments)
	} else {
		err = r.db.QueryRowContext(ctx,
			"SELECT id, allow_comments FROM containers WHERE moniker = $1",
			draft.Moniker,
		).Scan(&container.ID, &container.AllowComments)
	}

	switch {
	case err == nil:
		if r.enforceOpenGate && !container.AllowComments {
			return 0, ErrContainerClosed
		}
		return container.ID, nil
	case err != sql.ErrNoRows:
		return 0, err
	}

	// No container matched. Addressing by id never provisions; an unseen
	// moniker does.
	if draft.ContainerID != 0 || draft.Moniker == "" {
		return 0, ErrContainerNotFound
	}
	return r.createContainer(ctx, draft.Moniker)
}

// createContainer provisions a container for the moniker. Insert-if-absent:
// a concurrent writer may have created the row between our lookup and the
// insert, in which case the winner's id is re-read rather than surfacing
// the conflict as a failure.
func (r *monikerRepo) createContainer(ctx context.Context, moniker string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO containers (moniker) VALUES ($1) ON CONFLICT (moniker) DO NOTHING RETURNING id",
		moniker,
	).Scan(&id)
	if err == nil {
		r.log.Info().Int64("container_id", id).Str("moniker", moniker).Msg("Container provisioned")
		return id, nil
	}

	var pqErr *pq.Error
	lostRace := err == sql.ErrNoRows ||
		(errors.As(err, &pqErr) && pqErr.Code == uniqueViolation)
	if !lostRace {
		return 0, err
	}

	// Conflict path: another writer owns the moniker now
	err = r.db.QueryRowContext(ctx,
		"SELECT id FROM containers WHERE moniker = $1",
		moniker,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
