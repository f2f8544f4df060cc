package projects

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrSlugConflict = errors.New("projects: slug already in use")
	ErrIDRequired   = errors.New("projects: id is required")
)

// Validation error codes reported inside validation.Errors.
const (
	CodeTitleRequired            = "projects.title.required"
	CodeShortDescriptionRequired = "projects.short_description.required"
	CodeInvalidURL               = "projects.url.invalid"
	CodeInvalidSlug              = "projects.slug.invalid"
)

// IsValidation reports whether err carries field validation failures.
func IsValidation(err error) bool {
	var errs validation.Errors
	return errors.As(err, &errs)
}

// NotFoundError reports a missing project.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
