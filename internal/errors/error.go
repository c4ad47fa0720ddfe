package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryResource   Category = "resource"
	CategoryExpression Category = "expression"
	CategoryLocale     Category = "locale"
	CategoryConfig     Category = "config"
	CategoryRender     Category = "render"
	CategoryCLI        Category = "cli"
)

// Location represents a position in a configuration or source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// HeadError is a structured error with a code, suggestions, and documentation.
type HeadError struct {
	// Code is a unique error identifier (e.g., "H001").
	Code string

	// Category is the error type (resource, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to, if any.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is a snippet showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HeadError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HeadError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position to the error.
func (e *HeadError) WithLocation(file string, line, column int) *HeadError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithFile records the file the error refers to without a line.
func (e *HeadError) WithFile(file string) *HeadError {
	e.Location = &Location{File: file}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HeadError) WithSuggestion(s string) *HeadError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *HeadError) WithExample(ex string) *HeadError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HeadError) WithDetail(d string) *HeadError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *HeadError) Wrap(err error) *HeadError {
	e.Wrapped = err
	return e
}

// New creates a HeadError from a registered error code.
func New(code string) *HeadError {
	template, ok := registry[code]
	if !ok {
		return &HeadError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HeadError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new HeadError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HeadError {
	return &HeadError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Code returns the code of the first HeadError in err's chain, or "".
func Code(err error) string {
	for err != nil {
		if he, ok := err.(*HeadError); ok {
			return he.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
