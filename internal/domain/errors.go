package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
)

// Stable machine codes carried by domain errors.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeAuthorization          = "AUTHORIZATION_ERROR"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	CodeInvalidSerialFormat  = "INVALID_SERIAL_FORMAT"
	CodeNonSequentialSerial  = "NON_SEQUENTIAL_SERIAL"
	CodeBatchTooLarge        = "BATCH_TOO_LARGE"
	CodeSerialsNotGenerated  = "SERIALS_NOT_GENERATED"
	CodeInvalidCardState     = "INVALID_CARD_STATE"
	CodeIncompleteShipment   = "INCOMPLETE_SHIPMENT"
	CodeUnauthorizedStation  = "UNAUTHORIZED_STATION"
	CodeSerialOverlap        = "SERIAL_OVERLAP"
	CodeUnknownSerial        = "UNKNOWN_SERIAL"
	CodeCountMismatch        = "COUNT_MISMATCH"
	CodeAlreadyResolved      = "ALREADY_RESOLVED"
	CodeProductMismatch      = "PRODUCT_MISMATCH"
)

// Error is a domain error with a stable code and a human-readable message.
// Callers branch on the code; the message goes to people.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is matches another *Error by code, so sentinels like ErrConcurrentModification
// work with errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound               = &Error{Kind: KindNotFound, Code: CodeNotFound}
	ErrConcurrentModification = &Error{Kind: KindConflict, Code: CodeConcurrentModification}
	ErrAlreadyResolved        = &Error{Kind: KindValidation, Code: CodeAlreadyResolved}
)

// Validationf builds a validation error under the given code.
func Validationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorizedf builds an authorization error under the given code.
func Unauthorizedf(code, format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// ConcurrentModificationf builds the optimistic-check failure callers retry on.
func ConcurrentModificationf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: CodeConcurrentModification, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the stable code from err, or "" when err is not a domain error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf extracts the kind from err, or 0 when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
