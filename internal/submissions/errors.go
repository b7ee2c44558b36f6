package submissions

import (
	"errors"
	"net/http"
)

// Domain errors for submission operations.
var (
	ErrNotFound           = errors.New("submission not found")
	ErrDuplicate          = errors.New("submission id already exists")
	ErrStorage            = errors.New("storage error")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidContentType = errors.New("file type not allowed")
	ErrPayloadTooLarge    = errors.New("file size exceeds maximum allowed")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidForm        = errors.New("invalid form")
)

var domainErrors = []error{
	ErrNotFound,
	ErrDuplicate,
	ErrInvalidStatus,
	ErrInvalidTransition,
	ErrInvalidContentType,
	ErrPayloadTooLarge,
	ErrInvalidEmail,
	ErrInvalidForm,
}

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
