package errors

import "fmt"

// Validation creates a validation failure for argument.
func Validation(code, argument, message string) *ShellError {
	return &ShellError{
		Kind:     KindValidation,
		Code:     code,
		Argument: argument,
		Message:  message,
	}
}

// Validationf creates a validation failure with a formatted message.
func Validationf(code, argument, format string, args ...interface{}) *ShellError {
	return Validation(code, argument, fmt.Sprintf(format, args...))
}

// Required is the validation failure for a missing required argument.
func Required(argument, usage string) *ShellError {
	return Validation(ErrValidationRequired, argument, "Required parameter").WithUsage(usage)
}

// Remote creates a remote failure carrying the platform's status and message
// unchanged.
func Remote(status int, message string) *ShellError {
	return &ShellError{
		Kind:    KindRemote,
		Code:    RemoteCodeForStatus(status),
		Status:  status,
		Message: message,
	}
}

// RemoteWrap creates a remote failure for a transport error, i.e. one where
// no response was received.
func RemoteWrap(cause error, code, message string) *ShellError {
	return &ShellError{
		Kind:    KindRemote,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Internal creates an internal failure with a display label.
func Internal(code, label, message string) *ShellError {
	return &ShellError{
		Kind:    KindInternal,
		Code:    code,
		Label:   label,
		Message: message,
	}
}

// PasswordError is the internal failure raised by password prompts.
func PasswordError(message string) *ShellError {
	return Internal(ErrInternalPassword, "Password Error", message)
}

// PartialEffect reports that a remote side effect happened but the
// follow-up step failed.
func PartialEffect(message string, cause error) *ShellError {
	return Internal(ErrInternalPartial, "Error", message).WithCause(cause)
}

// Unclassified wraps a foreign error. Classify treats a bare foreign error
// the same way.
func Unclassified(cause error) *ShellError {
	return &ShellError{
		Kind:    KindUnclassified,
		Code:    ErrUnexpected,
		Message: "unexpected error",
		Cause:   cause,
	}
}

// Panic converts a recovered panic value into an unclassified error.
func Panic(value interface{}, stack []byte) *ShellError {
	return &ShellError{
		Kind:    KindUnclassified,
		Code:    ErrPanic,
		Message: fmt.Sprintf("panic: %v", value),
		Stack:   string(stack),
	}
}

// ConfigError is the internal failure raised while loading configuration.
func ConfigError(code, message string) *ShellError {
	return Internal(code, "Configuration Error", message)
}
