// Package types defines the error taxonomy shared by the parser, the tree
// runtime and the evaluator.
//
// Every failure is reported as a *Error carrying an ErrorCode. Codes are
// grouped into classes (see Class) so callers can tell a lookup failure from
// a syntax error, an invalid assignment target or a broken tree invariant
// without matching on message text.
package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode identifies a specific failure.
type ErrorCode string

// Error codes.
const (
	// P01xx: operator table lookups
	ErrUnexpectedToken ErrorCode = "P0101"

	// P02xx: syntax
	ErrPrefixPosition ErrorCode = "P0201"
	ErrInfixPosition  ErrorCode = "P0202"
	ErrExpectedToken  ErrorCode = "P0203"
	ErrUnexpectedEnd  ErrorCode = "P0204"

	// P03xx: assignment targets
	ErrInvalidLvalue ErrorCode = "P0301"

	// P04xx: call/index shape
	ErrNotCallable  ErrorCode = "P0401"
	ErrNotIndexable ErrorCode = "P0402"

	// A01xx: tree node invariants
	ErrFieldUnassigned ErrorCode = "A0101"
	ErrDuplicateField  ErrorCode = "A0102"
	ErrFieldType       ErrorCode = "A0103"
	ErrUnknownField    ErrorCode = "A0104"
	ErrSealed          ErrorCode = "A0105"
	ErrTooManyArgs     ErrorCode = "A0106"

	// A02xx: schema
	ErrUnknownType   ErrorCode = "A0201"
	ErrInvalidSchema ErrorCode = "A0202"

	// E01xx: evaluation
	ErrDivisionByZero    ErrorCode = "E0101"
	ErrNegativeExponent  ErrorCode = "E0102"
	ErrUndefinedFunction ErrorCode = "E0103"
	ErrIndexOutOfRange   ErrorCode = "E0104"
	ErrArgumentCount     ErrorCode = "E0105"
	ErrNotAnArray        ErrorCode = "E0106"
	ErrSliceValue        ErrorCode = "E0107"
	ErrNegativeShift     ErrorCode = "E0108"
	ErrDepthExceeded     ErrorCode = "E0109"
)

// Class groups error codes by the kind of defect they report.
type Class string

// Error classes.
const (
	LookupError        Class = "LookupError"
	SyntaxError        Class = "SyntaxError"
	LvalueError        Class = "LvalueError"
	ShapeError         Class = "ShapeError"
	InvariantViolation Class = "InvariantViolation"
	SchemaError        Class = "SchemaError"
	EvalError          Class = "EvalError"
)

// Class returns the class the code belongs to.
func (c ErrorCode) Class() Class {
	switch c {
	case ErrUnexpectedToken:
		return LookupError
	case ErrPrefixPosition, ErrInfixPosition, ErrExpectedToken, ErrUnexpectedEnd:
		return SyntaxError
	case ErrInvalidLvalue:
		return LvalueError
	case ErrNotCallable, ErrNotIndexable:
		return ShapeError
	case ErrUnknownType, ErrInvalidSchema:
		return SchemaError
	case ErrDivisionByZero, ErrNegativeExponent, ErrUndefinedFunction,
		ErrIndexOutOfRange, ErrArgumentCount, ErrNotAnArray, ErrSliceValue, ErrNegativeShift, ErrDepthExceeded:
		return EvalError
	default:
		return InvariantViolation
	}
}

// Position is a 1-based line/column pair. The zero value means "unknown".
type Position struct {
	Line int
	Col  int
}

// IsValid reports whether the position was set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error represents a structured error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position Position
	Token    string
	Err      error
}

// NewError creates a new error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position.IsValid() {
		return fmt.Sprintf("%s at %s: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Class returns the class of the error code.
func (e *Error) Class() Class {
	return e.Code.Class()
}

// WithToken adds token information to the error. The position is only
// recorded when the error does not carry one already.
func (e *Error) WithToken(text string, pos Position) *Error {
	e.Token = text
	if !e.Position.IsValid() {
		e.Position = pos
	}
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsClass reports whether err, or any error it wraps, is a *Error of the
// given class.
func IsClass(err error, class Class) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Class() == class
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
