package errors

import (
	"github.com/cockroachdb/errors"
)

// InternalError carries a developer message, a user-facing hint and
// optional reportable details alongside the wrapped cause.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint of the outermost InternalError in
// the chain. Empty when no hint was attached; callers choose their own
// generic fallback so internals never surface.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.hint
	}
	return ""
}

// ReportableDetails returns the structured details attached to the
// error, if any.
func ReportableDetails(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.reportableDetails
	}
	return nil
}
