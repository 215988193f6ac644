package simplecms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrProductNotFound indicates a product was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrBlogNotFound indicates a blog post was not found
	ErrBlogNotFound = errors.New("blog not found")

	// ErrHomeLogoNotFound indicates a home logo was not found
	ErrHomeLogoNotFound = errors.New("logo not found")

	// ErrObjectNotFound indicates an uploaded object was not found in a blob store
	ErrObjectNotFound = errors.New("object not found")

	// ErrStorageBackendNotFound indicates a storage backend was not registered
	ErrStorageBackendNotFound = errors.New("storage backend not found")

	// ErrUnsupportedOperation is returned by blob stores that cannot serve a request directly
	ErrUnsupportedOperation = errors.New("operation not supported by backend")
)

// IsNotFound reports whether err resolves to one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrBlogNotFound) ||
		errors.Is(err, ErrHomeLogoNotFound) ||
		errors.Is(err, ErrObjectNotFound)
}

// ValidationError reports rejected input for an entity. Err is usually a
// validation.Errors map or a *BlockError.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Entity, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BlockError identifies the content block that failed to decode or validate.
// Index is -1 when the position is not known.
type BlockError struct {
	Index int
	Type  BlockType
	Err   error
}

func (e *BlockError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("block %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// StorageError represents a failure of the document store or a blob store
type StorageError struct {
	Op     string
	Entity string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage operation %s failed for %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed for %s %s: %v", e.Op, e.Entity, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PositionFailure describes one product whose position could not be written
type PositionFailure struct {
	ID  uuid.UUID
	Err error
}

// PositionUpdateError is returned when a bulk position write did not reach
// every product. Positions of the products not listed were written.
type PositionUpdateError struct {
	Failures []PositionFailure
}

func (e *PositionUpdateError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.ID.String())
	}
	return fmt.Sprintf("position update failed for %d product(s): %s", len(e.Failures), strings.Join(ids, ", "))
}

// Unwrap exposes the individual failures so errors.Is can match a sentinel
// carried by any of them.
func (e *PositionUpdateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// AllNotFound reports whether every failure was caused by an unknown id.
func (e *PositionUpdateError) AllNotFound() bool {
	if len(e.Failures) == 0 {
		return false
	}
	for _, f := range e.Failures {
		if !IsNotFound(f.Err) {
			return false
		}
	}
	return true
}
