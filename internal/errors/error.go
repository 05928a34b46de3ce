package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/pkg/scope"
	"github.com/vango-dev/memolab/pkg/store"
)

// Category represents the type of error.
type Category string

const (
	CategoryScope      Category = "scope"
	CategoryNotFound   Category = "not_found"
	CategoryValidation Category = "validation"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
	CategoryInternal   Category = "internal"
)

// Location represents a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// LabError is a structured error with a code, an explanation and a hint.
type LabError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (scope, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to, if any.
	Location *Location

	// Context contains the lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LabError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LabError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position and the lines around it.
func (e *LabError) WithLocation(file string, line, column int) *LabError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LabError) WithSuggestion(s string) *LabError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *LabError) WithExample(ex string) *LabError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LabError) WithDetail(d string) *LabError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *LabError) Wrap(err error) *LabError {
	e.Wrapped = err
	return e
}

// HTTPStatus maps the error category to a response status.
func (e *LabError) HTTPStatus() int {
	switch e.Category {
	case CategoryScope:
		return http.StatusConflict
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryValidation, CategoryCLI:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a LabError from a registered error code.
func New(code string) *LabError {
	template, ok := registry[code]
	if !ok {
		return &LabError{
			Code:     code,
			Category: CategoryInternal,
			Message:  "Unknown error",
		}
	}
	return &LabError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new LabError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LabError {
	return &LabError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LabError.
func FromError(err error, code string) *LabError {
	if err == nil {
		return nil
	}
	var le *LabError
	if stderrors.As(err, &le) {
		return le
	}
	return New(code).Wrap(err)
}

// Classify maps an error from the lab to its registered code. Errors it
// does not recognise become E500.
func Classify(err error) *LabError {
	if err == nil {
		return nil
	}

	var le *LabError
	if stderrors.As(err, &le) {
		return le
	}

	switch {
	case stderrors.Is(err, demo.ErrClosed), stderrors.Is(err, store.ErrClosed):
		return New("E002").Wrap(err)
	case stderrors.Is(err, scope.ErrScopeViolation):
		return New("E001").Wrap(err)
	case stderrors.Is(err, demo.ErrUnknownPage):
		return New("E201").Wrap(err)
	case stderrors.Is(err, demo.ErrUnknownAction):
		return New("E202").Wrap(err)
	case stderrors.Is(err, demo.ErrInvalidArgument):
		return New("E203").Wrap(err)
	default:
		return New("E500").Wrap(err)
	}
}
