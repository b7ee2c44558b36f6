package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/image-intake/pkg/database"
	"github.com/JaimeStill/image-intake/pkg/pagination"
	"github.com/JaimeStill/image-intake/pkg/query"
	"github.com/JaimeStill/image-intake/pkg/repository"
	"github.com/JaimeStill/image-intake/pkg/storage"
)

type repo struct {
	db         *sql.DB
	dialect    database.Dialect
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a submission store backed by db. Stored images referenced by
// deleted submissions are removed from store.
func New(db database.System, store storage.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db.Connection(),
		dialect:    db.Dialect(),
		storage:    store,
		logger:     logger.With("system", "submissions"),
		pagination: pagination,
	}
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	if strings.TrimSpace(cmd.Email) == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalidEmail)
	}
	if cmd.OriginalImagePath == "" {
		return nil, fmt.Errorf("%w: original image path required", ErrInvalidForm)
	}

	id := cmd.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := timestamp()

	q := r.dialect.Rebind(`INSERT INTO image_submissions(id, email, original_image_path, status, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $5)
		RETURNING ` + returning)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			id, cmd.Email, cmd.OriginalImagePath, string(StatusPending), now,
		}, scanSubmission)
	})
	if err != nil {
		return nil, r.mapError("create submission", err)
	}

	r.logger.Info("submission created", "id", sub.ID, "path", sub.OriginalImagePath)
	return &sub, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := r.builder().BuildSingle("Id", id)

	sub, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, r.mapError("find submission", err)
	}
	return &sub, nil
}

func (r *repo) List(ctx context.Context) ([]Submission, error) {
	q, args := r.builder().BuildAll()

	subs, err := repository.QueryMany(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, r.mapError("list submissions", err)
	}
	return subs, nil
}

func (r *repo) Page(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := r.builder().WhereSearch(page.Search, "Email")
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, r.mapError("count submissions", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	subs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubmission)
	if err != nil {
		return nil, r.mapError("query submissions", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}

// UpdateStatus reads the current record, validates the transition, and writes
// the new state guarded on the status it read. A concurrent writer that moved
// the record in between causes ErrInvalidTransition.
func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, cmd UpdateStatusCommand) (*Submission, error) {
	if err := cmd.Status.Validate(); err != nil {
		return nil, err
	}

	find, findArgs := r.builder().BuildSingle("Id", id)
	update := r.dialect.Rebind(`UPDATE image_submissions
		SET status = $1, result_image_path = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + returning)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		current, err := repository.QueryOne(ctx, tx, find, findArgs, scanSubmission)
		if err != nil {
			return Submission{}, err
		}

		resultPath, err := current.apply(cmd)
		if err != nil {
			return Submission{}, err
		}

		now := timestamp()
		if now.Before(current.CreatedAt) {
			now = current.CreatedAt
		}

		updated, err := repository.QueryOne(ctx, tx, update, []any{
			string(cmd.Status), resultPath, now, id, string(current.Status),
		}, scanSubmission)
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return updated, err
	})
	if err != nil {
		return nil, r.mapError("update submission status", err)
	}

	r.logger.Info("submission status updated", "id", sub.ID, "status", sub.Status)
	return &sub, nil
}

// Delete removes the record, then its stored image. The image removal is
// best-effort: failures are logged and the deletion still succeeds.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	find, findArgs := r.builder().BuildSingle("Id", id)
	del := r.dialect.Rebind(`DELETE FROM image_submissions WHERE id = $1`)

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		current, err := repository.QueryOne(ctx, tx, find, findArgs, scanSubmission)
		if err != nil {
			return Submission{}, err
		}
		return current, repository.ExecExpectOne(ctx, tx, del, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, r.mapError("delete submission", err)
	}

	key := filepath.Base(sub.OriginalImagePath)
	if err := r.storage.Delete(ctx, key); err != nil {
		r.logger.Warn("stored image cleanup failed", "id", id, "key", key, "error", err)
	}

	r.logger.Info("submission deleted", "id", id)
	return true, nil
}

func (r *repo) Image(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	sub, err := r.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}

	key := filepath.Base(sub.OriginalImagePath)
	rc, err := r.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: image for %s", ErrNotFound, id)
		}
		return nil, "", fmt.Errorf("open image: %w: %w", ErrStorage, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, contentType, nil
}

func (r *repo) builder() *query.Builder {
	return query.NewBuilder(projection, defaultSort...).WithDialect(r.dialect)
}

// mapError leaves domain errors untouched and classifies everything else as
// a storage failure.
func (r *repo) mapError(op string, err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
	if isDomainError(mapped) {
		return mapped
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, mapped)
}

// timestamp returns the current time at the precision both engines preserve.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
