// Package submissions tracks image submissions from upload through processing.
// The Uploader validates and stores incoming images; the System persists one
// record per stored image and enforces the status lifecycle.
package submissions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the processing state of a submission.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusReceived, StatusCompleted, StatusFailed}

// Validate returns ErrInvalidStatus for values outside the closed set.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusReceived, StatusCompleted, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Submission is a stored image awaiting or finished with processing.
// ResultImagePath is set if and only if Status is completed.
type Submission struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	OriginalImagePath string    `json:"original_image_path"`
	ResultImagePath   *string   `json:"result_image_path"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateCommand contains the data required to record a stored image.
// A nil ID is replaced with a freshly generated one.
type CreateCommand struct {
	ID                uuid.UUID
	Email             string
	OriginalImagePath string
}

// UpdateStatusCommand moves a submission to a new status.
// A nil ResultPath leaves the stored result path untouched.
type UpdateStatusCommand struct {
	Status     Status  `json:"status"`
	ResultPath *string `json:"result_path,omitempty"`
}

// apply validates cmd against the current state and returns the result path
// the record should hold afterwards.
func (s *Submission) apply(cmd UpdateStatusCommand) (*string, error) {
	if s.Status.IsTerminal() && cmd.Status != s.Status {
		return nil, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, s.Status)
	}

	if cmd.ResultPath != nil {
		if cmd.Status != StatusCompleted {
			return nil, fmt.Errorf("%w: result path only allowed with %s", ErrInvalidTransition, StatusCompleted)
		}
		if *cmd.ResultPath == "" {
			return nil, fmt.Errorf("%w: result path is empty", ErrInvalidTransition)
		}
		return cmd.ResultPath, nil
	}

	if cmd.Status == StatusCompleted {
		if s.ResultImagePath == nil {
			return nil, fmt.Errorf("%w: %s requires a result path", ErrInvalidTransition, StatusCompleted)
		}
		return s.ResultImagePath, nil
	}

	return nil, nil
}

// Receipt is returned to the client once an upload has been recorded.
type Receipt struct {
	SubmissionID uuid.UUID
	StoredPath   string
}
