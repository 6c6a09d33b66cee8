package filter

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes filter errors.
type ErrorCode string

const (
	// CodeMalformedFilter indicates a filter that is neither a condition
	// nor a compound.
	CodeMalformedFilter ErrorCode = "MALFORMED_FILTER"

	// CodeUnknownLogicalOperator indicates a compound operator other than
	// and, or and not.
	CodeUnknownLogicalOperator ErrorCode = "UNKNOWN_LOGICAL_OPERATOR"

	// CodeUnknownOperator indicates a condition operator outside the
	// Operator set.
	CodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrMalformedFilter        = &Error{Code: CodeMalformedFilter, Message: "filter is neither a condition nor a compound"}
	ErrUnknownLogicalOperator = &Error{Code: CodeUnknownLogicalOperator, Message: "unknown logical operator"}
	ErrUnknownOperator        = &Error{Code: CodeUnknownOperator, Message: "unknown operator"}
)

// Error is a caller error detected while decoding or evaluating a filter.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Operator is the offending operator, when there is one.
	Operator string

	// Path locates the node within the filter document (e.g.
	// "conditions[1].conditions[0]"). Empty for the root.
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Operator != "" {
		msg += fmt.Sprintf(" %q", e.Operator)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func malformed(path, format string, args ...any) *Error {
	return &Error{Code: CodeMalformedFilter, Message: fmt.Sprintf(format, args...), Path: path}
}

func unknownLogicalOperator(op LogicalOperator, path string) *Error {
	return &Error{Code: CodeUnknownLogicalOperator, Message: "unknown logical operator", Operator: string(op), Path: path}
}

func unknownOperator(op Operator, path string) *Error {
	return &Error{Code: CodeUnknownOperator, Message: "unknown operator", Operator: string(op), Path: path}
}

// IsMalformed reports whether err is a malformed filter error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedFilter)
}

// IsUnknownOperator reports whether err names an unknown condition or
// logical operator.
func IsUnknownOperator(err error) bool {
	return errors.Is(err, ErrUnknownOperator) || errors.Is(err, ErrUnknownLogicalOperator)
}
