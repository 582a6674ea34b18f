package task

import "fmt"

// Field limits enforced locally before any request is sent. The server
// enforces the same limits; these exist to fail fast without a network
// round trip.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// ValidationError is a field-scoped local validation failure. It never
// reaches the network.
type ValidationError struct {
	Field string // form field the error belongs to
	Err   error  // underlying error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateTitle checks title presence and length.
func ValidateTitle(title string) *ValidationError {
	if title == "" {
		return &ValidationError{Field: "title", Err: fmt.Errorf("is required")}
	}
	if n := len([]rune(title)); n > MaxTitleLen {
		return &ValidationError{Field: "title", Err: fmt.Errorf("must be at most %d characters, got %d", MaxTitleLen, n)}
	}
	return nil
}

// ValidateDescription checks description length.
func ValidateDescription(desc string) *ValidationError {
	if n := len([]rune(desc)); n > MaxDescriptionLen {
		return &ValidationError{Field: "description", Err: fmt.Errorf("must be at most %d characters, got %d", MaxDescriptionLen, n)}
	}
	return nil
}

// Validate checks a create payload. Returns the first field error found.
func (r CreateRequest) Validate() *ValidationError {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	return ValidateDescription(r.Description)
}

// Validate checks an update payload.
func (r UpdateRequest) Validate() *ValidationError {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return &ValidationError{Field: "status", Err: fmt.Errorf("invalid status %d", int(r.Status))}
	}
	return nil
}
