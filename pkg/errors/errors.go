// Package errors provides the structured error type shared by every oaesh
// command. Each error carries exactly one Kind, which the shell's recovery
// pipeline switches on to decide how to report it.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a command failure. Ordered from most to least specific.
type Kind int

const (
	// KindUnclassified is anything the shell has no recovery semantics for:
	// programming errors, recovered panics, foreign error types.
	KindUnclassified Kind = iota

	// KindValidation is a malformed or missing command argument. Raised
	// before any remote call, so session state is never mutated.
	KindValidation

	// KindRemote is a failure reported by the remote platform (or the
	// transport underneath it). Status and Message are shown verbatim.
	KindRemote

	// KindInternal is a local invariant violated after a remote side effect
	// already happened (e.g. the account was created, the login was not).
	KindInternal
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote"
	case KindInternal:
		return "internal"
	default:
		return "unclassified"
	}
}

// ShellError is the single error type raised by commands.
type ShellError struct {
	// Kind selects the recovery path.
	Kind Kind

	// Code is a stable identifier (e.g. "VALIDATION_REQUIRED").
	Code string

	// Message is the human readable description.
	Message string

	// Argument names the offending argument (validation only).
	Argument string

	// Usage is the command usage text shown after a validation failure.
	Usage string

	// Status is the numeric status of a remote failure; 0 when no response
	// was received.
	Status int

	// Label prefixes internal failures (e.g. "Password Error").
	Label string

	// Context provides additional key-value details.
	Context map[string]string

	// Cause is the wrapped underlying error.
	Cause error

	// Stack is the goroutine stack captured when a panic was recovered.
	Stack string

	// Suggestions are remediation hints for the operator.
	Suggestions []string
}

// Error implements the error interface.
func (e *ShellError) Error() string {
	var head string
	switch e.Kind {
	case KindValidation:
		head = fmt.Sprintf("validation error (%s): %s", e.Argument, e.Message)
	case KindRemote:
		head = fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
	case KindInternal:
		head = fmt.Sprintf("%s: %s", e.Label, e.Message)
	default:
		head = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Cause != nil {
		return head + ": " + e.Cause.Error()
	}
	return head
}

// Unwrap returns the underlying cause.
func (e *ShellError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target. Two ShellErrors match on Code.
func (e *ShellError) Is(target error) bool {
	if t, ok := target.(*ShellError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *ShellError) WithContext(key, value string) *ShellError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *ShellError) WithCause(cause error) *ShellError {
	e.Cause = cause
	return e
}

// WithUsage attaches usage text shown after the message.
func (e *ShellError) WithUsage(usage string) *ShellError {
	e.Usage = usage
	return e
}

// WithSuggestion adds a remediation suggestion.
func (e *ShellError) WithSuggestion(suggestion string) *ShellError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple remediation suggestions.
func (e *ShellError) WithSuggestions(suggestions ...string) *ShellError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasContext returns true if the error has context information.
func (e *ShellError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *ShellError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries sorted by key.
func (e *ShellError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// As finds the first ShellError in err's chain.
func As(err error) (*ShellError, bool) {
	if err == nil {
		return nil, false
	}
	var se *ShellError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Classify returns the kind of err. Errors that are not ShellErrors are
// unclassified.
func Classify(err error) Kind {
	if se, ok := As(err); ok {
		return se.Kind
	}
	return KindUnclassified
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && Classify(err) == kind
}

// IsCode reports whether err is a ShellError with the given code.
func IsCode(err error, code string) bool {
	if se, ok := As(err); ok {
		return se.Code == code
	}
	return false
}

// StatusOf returns the remote status carried by err, or 0.
func StatusOf(err error) int {
	if se, ok := As(err); ok && se.Kind == KindRemote {
		return se.Status
	}
	return 0
}
