package submissions

import (
	"net/url"

	"github.com/JaimeStill/image-intake/pkg/query"
	"github.com/JaimeStill/image-intake/pkg/repository"
)

const table = "image_submissions"

// returning lists the columns in scan order for INSERT/UPDATE ... RETURNING.
const returning = "id, email, original_image_path, result_image_path, status, created_at, updated_at"

var projection = query.NewProjectionMap(table, "s").
	Project("id", "Id").
	Project("email", "Email").
	Project("original_image_path", "OriginalImagePath").
	Project("result_image_path", "ResultImagePath").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "Id", Descending: true},
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub    Submission
		status string
	)
	err := s.Scan(
		&sub.ID,
		&sub.Email,
		&sub.OriginalImagePath,
		&sub.ResultImagePath,
		&status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	sub.Status = Status(status)
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return sub, err
}

// Filters contains optional criteria for filtering submission queries.
type Filters struct {
	Status *Status
	Email  *string
}

// FiltersFromQuery extracts submission filters from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		status := Status(s)
		if err := status.Validate(); err != nil {
			return f, err
		}
		f.Status = &status
	}

	if e := values.Get("email"); e != "" {
		f.Email = &e
	}

	return f, nil
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}
	return b.
		WhereEquals("Status", status).
		WhereContains("Email", f.Email)
}
