package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateVote is returned when a user rates a recipe a second time.
	ErrDuplicateVote = errors.New("you have already voted for this recipe")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrProviderUnavailable means every attempt to reach the provider failed.
	ErrProviderUnavailable = errors.New("text provider unavailable")
	// ErrImagesDisabled is returned when no object storage is configured.
	ErrImagesDisabled = errors.New("recipe images are not configured")
	// ErrForbidden is returned when a user acts on a recipe they did not author.
	ErrForbidden = errors.New("forbidden")
)

// NotFoundError is returned when an entity is absent and cannot be generated.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError is returned when a unique user attribute is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already taken", e.Field)
}

// ProviderError is a non-retryable HTTP failure from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
