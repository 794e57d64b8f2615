// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// includes utilities for converting to and from gRPC status errors.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Input validation
	CodeUnbalancedProblem ErrorCode = "UNBALANCED_PROBLEM"
	CodeNegativeCost      ErrorCode = "NEGATIVE_COST"
	CodeNegativeSupply    ErrorCode = "NEGATIVE_SUPPLY"
	CodeNegativeDemand    ErrorCode = "NEGATIVE_DEMAND"
	CodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
	CodeEmptyProblem      ErrorCode = "EMPTY_PROBLEM"
	CodeNegativeFlow      ErrorCode = "NEGATIVE_FLOW"
	CodeInvalidStrategy   ErrorCode = "INVALID_STRATEGY"
	CodeMalformedFile     ErrorCode = "MALFORMED_FILE"

	// Basis structure
	CodeDisconnectedBasis  ErrorCode = "DISCONNECTED_BASIS"
	CodeBasisCycle         ErrorCode = "BASIS_CYCLE"
	CodeWrongBasisCount    ErrorCode = "WRONG_BASIS_COUNT"
	CodeCycleNotFound      ErrorCode = "CYCLE_NOT_FOUND"
	CodeRepairFailed       ErrorCode = "REPAIR_FAILED"
	CodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// Solver
	CodeIterationLimit ErrorCode = "ITERATION_LIMIT"
	CodeTimeout        ErrorCode = "TIMEOUT"
	CodeSolverError    ErrorCode = "SOLVER_ERROR"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the application error into a gRPC status.Status.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

// grpcCode maps an ErrorCode to an appropriate gRPC codes.Code.
func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeUnbalancedProblem, CodeNegativeCost, CodeNegativeSupply,
		CodeNegativeDemand, CodeDimensionMismatch, CodeEmptyProblem,
		CodeNegativeFlow, CodeInvalidStrategy, CodeMalformedFile,
		CodeInvalidArgument, CodeNilInput:
		return codes.InvalidArgument

	case CodeDisconnectedBasis, CodeBasisCycle, CodeWrongBasisCount,
		CodeCycleNotFound:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound

	case CodeTimeout, CodeIterationLimit:
		return codes.DeadlineExceeded

	case CodeRepairFailed, CodeInvariantViolation:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWithField creates a new application error with the given code, message, and field.
// The default severity is SeverityError.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityCritical,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
// It uses errors.As to unwrap the error chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts an application error or any other error into a gRPC error status.
// If the error is an *Error, it uses its GRPCStatus method.
// If it's already a gRPC status error, it's returned as is.
// Otherwise, it's wrapped as an internal gRPC error.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, err.Error())
}

// IsWarning checks if the given error is an application error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// Predefined errors for common scenarios.
var (
	ErrUnbalancedProblem = New(CodeUnbalancedProblem, "total supply does not equal total demand")
	ErrEmptyProblem      = New(CodeEmptyProblem, "problem has no rows or no columns")
	ErrDisconnectedBasis = New(CodeDisconnectedBasis, "basis graph is disconnected")
	ErrCycleNotFound     = New(CodeCycleNotFound, "no cycle closed by entering cell")
	ErrIterationLimit    = New(CodeIterationLimit, "iteration limit exceeded")
	ErrTimeout           = New(CodeTimeout, "operation timed out")
	ErrNilProblem        = New(CodeNilInput, "problem is nil")
	ErrNilAllocation     = New(CodeNilInput, "allocation is nil")
)
