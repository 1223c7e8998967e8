package enquiry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFields is matched by every ValidationError.
	ErrMissingFields = errors.New("missing required fields")

	// ErrDispatchFault marks an unexpected failure while relaying an enquiry.
	ErrDispatchFault = errors.New("dispatch fault")
)

// ValidationError lists the required fields that were absent, empty or not text.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingFields
}
