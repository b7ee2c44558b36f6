package submissions

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/image-intake/pkg/pagination"
)

// System defines the submission store operations.
// Every operation is atomic per record.
type System interface {
	Create(ctx context.Context, cmd CreateCommand) (*Submission, error)
	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
	List(ctx context.Context) ([]Submission, error)
	Page(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Submission], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, cmd UpdateStatusCommand) (*Submission, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Image opens the stored original image and reports its content type.
	// The caller closes the reader.
	Image(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error)
}
