package api

import "github.com/JaimeStill/image-intake/internal/submissions"

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Submissions submissions.System
	Uploader    *submissions.Uploader
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	submissionsSys := submissions.New(
		runtime.Database,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	uploader := submissions.NewUploader(
		submissionsSys,
		runtime.Storage,
		runtime.Logger,
		runtime.Upload.MaxSizeBytes(),
		runtime.Upload.AllowedContentTypes,
	)

	return &Domain{
		Submissions: submissionsSys,
		Uploader:    uploader,
	}
}
