package dom

import (
	"errors"
	"fmt"
	"strings"
)

// The dom package never panics past an operation boundary and never returns a
// bare error for an expected failure mode. Every failure the calling decision
// process can act on is one of the typed errors below; callers are expected to
// treat them as feedback (re-enumerate, pick another value) rather than as
// fatal conditions.

// StaleHandleError reports a handle whose referent no longer exists or is no
// longer attached to the document. Recoverable by re-enumerating the page.
type StaleHandleError struct {
	Handle Handle
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("stale handle %q: element is gone or detached, re-run element enumeration", e.Handle)
}

// OptionNotFoundError reports a selection-control fill whose value matched no
// option. Choices carries a bounded preview of the available option texts.
type OptionNotFoundError struct {
	Handle  Handle
	Value   string
	Choices []string
	// Truncated is set when the control has more options than Choices shows.
	Truncated bool
}

func (e *OptionNotFoundError) Error() string {
	preview := strings.Join(e.Choices, ", ")
	if e.Truncated {
		preview += ", ..."
	}
	return fmt.Sprintf("no option matching %q on %s; available: %s", e.Value, e.Handle, preview)
}

// TypeMismatchError reports a value that cannot be coerced to the taxonomy of
// the target element, e.g. a non-numeric string for a number input.
type TypeMismatchError struct {
	Handle Handle
	Value  string
	Want   Taxonomy
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value %q is not valid for %s element %s", e.Value, e.Want, e.Handle)
}

// UnsupportedElementError reports a fill attempted against a tag with no
// defined value-injection handling.
type UnsupportedElementError struct {
	Handle Handle
	Tag    string
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("element %s has unsupported tag <%s> for form input", e.Handle, e.Tag)
}

// UnexpectedError wraps any fault that is not one of the expected failure
// modes: script evaluation errors, malformed page results, recovered panics.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: unexpected error: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// IsStale reports whether err is (or wraps) a StaleHandleError.
func IsStale(err error) bool {
	var stale *StaleHandleError
	return errors.As(err, &stale)
}

// unexpected normalizes an arbitrary fault into an UnexpectedError unless it
// is already one of the package's typed failures, which pass through intact.
func unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		stale       *StaleHandleError
		notFound    *OptionNotFoundError
		mismatch    *TypeMismatchError
		unsupported *UnsupportedElementError
		unexp       *UnexpectedError
	)
	if errors.As(err, &stale) || errors.As(err, &notFound) ||
		errors.As(err, &mismatch) || errors.As(err, &unsupported) || errors.As(err, &unexp) {
		return err
	}
	return &UnexpectedError{Op: op, Err: err}
}

// recoverGuard converts a panic into an UnexpectedError assigned to *errp.
// Used at every public operation boundary: internal faults must surface as
// failure values, never escape to the caller.
func recoverGuard(op string, errp *error) {
	if r := recover(); r != nil {
		*errp = &UnexpectedError{Op: op, Err: fmt.Errorf("recovered panic: %v", r)}
	}
}
