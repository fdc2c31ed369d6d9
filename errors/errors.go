package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorType represents the kind of failure a conversion ran into
type ErrorType string

const (
	// Caller errors, detected before any file is touched
	ErrorTypeUsage              ErrorType = "usage"
	ErrorTypeInvalidScaleFactor ErrorType = "invalid_scale_factor"

	// File errors
	ErrorTypeSourceUnreadable      ErrorType = "source_unreadable"
	ErrorTypeDestinationUnwritable ErrorType = "destination_unwritable"
	ErrorTypeUnsupportedFormat     ErrorType = "unsupported_format"

	// Failures while pixel data is being streamed
	ErrorTypeTranscodeIO ErrorType = "transcode_io"

	ErrorTypeUnknown ErrorType = "unknown"
)

// Process exit codes. ExitInvalidScaleFactor is -1 truncated to the 8-bit exit status.
const (
	ExitOK                    = 0
	ExitUsage                 = 1
	ExitSourceUnreadable      = 2
	ExitDestinationUnwritable = 3
	ExitUnsupportedFormat     = 4
	ExitTranscodeIO           = 5
	ExitInvalidScaleFactor    = 255
)

var exitCodes = map[ErrorType]int{
	ErrorTypeUsage:                 ExitUsage,
	ErrorTypeInvalidScaleFactor:    ExitInvalidScaleFactor,
	ErrorTypeSourceUnreadable:      ExitSourceUnreadable,
	ErrorTypeDestinationUnwritable: ExitDestinationUnwritable,
	ErrorTypeUnsupportedFormat:     ExitUnsupportedFormat,
	ErrorTypeTranscodeIO:           ExitTranscodeIO,
}

// AppError represents a structured conversion error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	InnerError error                  `json:"-"`
	Stack      []string               `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.InnerError != nil {
		return e.InnerError.Error()
	}
	return string(e.Type)
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithMessage adds a message to the error
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithCode adds a code to the error
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *AppError) WithStack() *AppError {
	e.Stack = captureStack(3)
	return e
}

// ExitCode returns the process exit code for the error type.
func (e *AppError) ExitCode() int {
	if code, ok := exitCodes[e.Type]; ok {
		return code
	}
	return ExitUsage
}

// Is reports whether target is an AppError of the same type
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    codeFor(errType),
	}
}

// FromError converts an arbitrary error to an AppError, unwrapping if one is already in the chain
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Message:    err.Error(),
		InnerError: err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	return FromError(err).WithMessage(message)
}

// WrapWithType wraps an error with a specific type
func WrapWithType(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		InnerError: err,
		Code:       codeFor(errType),
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	return FromError(err).Type
}

// Sentinels usable with errors.Is
var (
	ErrUsage                 = New(ErrorTypeUsage, "usage")
	ErrInvalidScaleFactor    = New(ErrorTypeInvalidScaleFactor, "invalid scale factor")
	ErrSourceUnreadable      = New(ErrorTypeSourceUnreadable, "source unreadable")
	ErrDestinationUnwritable = New(ErrorTypeDestinationUnwritable, "destination unwritable")
	ErrUnsupportedFormat     = New(ErrorTypeUnsupportedFormat, "unsupported file format")
	ErrTranscodeIO           = New(ErrorTypeTranscodeIO, "transcode i/o error")
)

func NewUsage(message string) *AppError {
	return New(ErrorTypeUsage, message)
}

func NewInvalidScaleFactor(value interface{}, max int) *AppError {
	return New(ErrorTypeInvalidScaleFactor, fmt.Sprintf("scale factor must be a positive integer no greater than %d", max)).
		WithDetail("value", value).
		WithDetail("max", max)
}

func NewSourceUnreadable(path string, err error) *AppError {
	return WrapWithType(err, ErrorTypeSourceUnreadable, fmt.Sprintf("could not open %s", path)).
		WithDetail("path", path)
}

func NewDestinationUnwritable(path string, err error) *AppError {
	return WrapWithType(err, ErrorTypeDestinationUnwritable, fmt.Sprintf("could not create %s", path)).
		WithDetail("path", path)
}

// NewUnsupportedFormat reports a header field that fails the 24-bit uncompressed check.
func NewUnsupportedFormat(field string, got, want interface{}) *AppError {
	return New(ErrorTypeUnsupportedFormat, "unsupported file format").
		WithDetail("field", field).
		WithDetail("got", got).
		WithDetail("want", want)
}

// NewTranscodeIO reports a read or write failure after the output headers were written.
// The destination is left truncated.
func NewTranscodeIO(op string, err error) *AppError {
	return WrapWithType(err, ErrorTypeTranscodeIO, fmt.Sprintf("%s failed during transcoding", op)).
		WithDetail("op", op)
}

// Error codes
const (
	CodeUsage                 = "USAGE"
	CodeInvalidScaleFactor    = "INVALID_SCALE_FACTOR"
	CodeSourceUnreadable      = "SOURCE_UNREADABLE"
	CodeDestinationUnwritable = "DESTINATION_UNWRITABLE"
	CodeUnsupportedFormat     = "UNSUPPORTED_FORMAT"
	CodeTranscodeIO           = "TRANSCODE_IO"
	CodeUnknown               = "UNKNOWN"
)

func codeFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeUsage:
		return CodeUsage
	case ErrorTypeInvalidScaleFactor:
		return CodeInvalidScaleFactor
	case ErrorTypeSourceUnreadable:
		return CodeSourceUnreadable
	case ErrorTypeDestinationUnwritable:
		return CodeDestinationUnwritable
	case ErrorTypeUnsupportedFormat:
		return CodeUnsupportedFormat
	case ErrorTypeTranscodeIO:
		return CodeTranscodeIO
	default:
		return CodeUnknown
	}
}

// ErrorFormatter formats errors for display
type ErrorFormatter struct {
	showDetails bool
	showStack   bool
	showInner   bool
}

// NewErrorFormatter creates a new error formatter
func NewErrorFormatter(showDetails, showStack, showInner bool) *ErrorFormatter {
	return &ErrorFormatter{
		showDetails: showDetails,
		showStack:   showStack,
		showInner:   showInner,
	}
}

// Format formats an error as a single line
func (f *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	appErr := FromError(err)

	parts := []string{appErr.Error()}

	if f.showDetails && len(appErr.Details) > 0 {
		keys := make([]string, 0, len(appErr.Details))
		for k := range appErr.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, appErr.Details[k]))
		}
	}

	if f.showInner && appErr.InnerError != nil {
		parts = append(parts, "caused_by: "+appErr.InnerError.Error())
	}

	if f.showStack && len(appErr.Stack) > 0 {
		parts = append(parts, "stack: "+strings.Join(appErr.Stack, " <- "))
	}

	return strings.Join(parts, " | ")
}

// captureStack captures the call stack
func captureStack(skip int) []string {
	var stack []string
	for i := skip; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()
		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}

		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, funcName))
	}
	return stack
}
