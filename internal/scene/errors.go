package scene

import (
	"errors"
	"fmt"
)

// Reason identifies why a scene was skipped.
type Reason string

// Skip reasons. A skipped scene is excluded from every split; the batch
// continues with the next scene.
const (
	ReasonMissingField         Reason = "missing_field"
	ReasonMalformedMove        Reason = "malformed_move"
	ReasonInvalidVideo         Reason = "invalid_video"
	ReasonInsufficientCoverage Reason = "insufficient_coverage"
	ReasonAmbiguousOverlap     Reason = "ambiguous_overlap"
	ReasonUnreadable           Reason = "unreadable_scene" // file is not a JSON scene record
)

// SkipError is a soft failure: the scene is not usable, but nothing is
// wrong with the pipeline itself.
type SkipError struct {
	Reason  Reason
	Message string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Skip creates a SkipError with a formatted message.
func Skip(reason Reason, format string, args ...any) *SkipError {
	return &SkipError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err is (or wraps) a SkipError.
func IsSkip(err error) bool {
	var skipErr *SkipError
	return errors.As(err, &skipErr)
}

// SkipReason returns the reason of a wrapped SkipError, or "".
func SkipReason(err error) Reason {
	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		return skipErr.Reason
	}
	return ""
}
