// Package pipeerr defines the structured error kinds the pipeline can
// fail with and the exit-code policy attached to each.
package pipeerr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is one of the structured, fatal-unless-noted error kinds.
type Kind string

const (
	KindInputMissing               Kind = "InputMissing"
	KindInputMalformed             Kind = "InputMalformed"
	KindAcademicComplianceViolation Kind = "AcademicComplianceViolation"
	KindPropagationFailure         Kind = "PropagationFailure"
	KindFrameTransformNonConvergent Kind = "FrameTransformNonConvergent"
	KindStageTimeout               Kind = "StageTimeout"
	KindValidationFailed           Kind = "ValidationFailed"
	KindInsufficientCoverage       Kind = "InsufficientCoverage"
)

// ExitCode maps a Kind to the CLI exit code it should produce.
// PropagationFailureKind/ValidationFailedKind append a <suffix> to their
// base kind, so this matches by prefix rather than exact equality.
func (k Kind) ExitCode() int {
	switch {
	case k == KindInputMissing, k == KindInputMalformed:
		return 3
	case k == KindAcademicComplianceViolation:
		return 1
	case strings.HasPrefix(string(k), string(KindValidationFailed)):
		return 1
	case k == KindInsufficientCoverage:
		return 1
	case k == KindStageTimeout:
		return 2
	case strings.HasPrefix(string(k), string(KindPropagationFailure)):
		return 2
	default:
		return 2
	}
}

// Error is the structured, JSON-serializable fatal error written to
// stderr when the pipeline exits non-zero.
type Error struct {
	ErrorKind       Kind   `json:"error_kind"`
	Location        string `json:"location"`
	Detail          string `json:"detail"`
	RemediationHint string `json:"remediation_hint"`
	wrapped         error
}

// New builds a pipeerr.Error.
func New(kind Kind, location, detail, remediationHint string) *Error {
	return &Error{ErrorKind: kind, Location: location, Detail: detail, RemediationHint: remediationHint}
}

// Wrap builds a pipeerr.Error that also preserves the underlying cause
// for errors.Is/As and %w formatting.
func Wrap(kind Kind, location, remediationHint string, cause error) *Error {
	return &Error{ErrorKind: kind, Location: location, Detail: cause.Error(), RemediationHint: remediationHint, wrapped: cause}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.ErrorKind, e.Location, e.Detail)
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.wrapped }

// JSON renders the error as a single JSON object, no surrounding text,
// suitable for writing directly to stderr.
func (e *Error) JSON() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(fmt.Sprintf(`{"error_kind":%q,"detail":"failed to marshal error"}`, e.ErrorKind))
	}
	return b
}

// PropagationFailureKind builds the per-status PropagationFailure<code>
// kind string.
func PropagationFailureKind(status string) Kind {
	return Kind(fmt.Sprintf("%s<%s>", KindPropagationFailure, status))
}

// ValidationFailedKind builds the per-check ValidationFailed<check> kind
// string.
func ValidationFailedKind(check string) Kind {
	return Kind(fmt.Sprintf("%s<%s>", KindValidationFailed, check))
}
