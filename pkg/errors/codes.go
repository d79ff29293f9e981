package errors

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrValidationRequired indicates a required argument is missing.
	ErrValidationRequired = "VALIDATION_REQUIRED"

	// ErrValidationInvalidValue indicates an argument value is invalid.
	ErrValidationInvalidValue = "VALIDATION_INVALID_VALUE"

	// ErrValidationInvalidFormat indicates an argument is not in the expected
	// format (e.g. a key=value pair without "=").
	ErrValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"

	// ErrValidationConflict indicates mutually exclusive arguments were given.
	ErrValidationConflict = "VALIDATION_CONFLICT"

	// ErrValidationFlags indicates the flag parser rejected the arguments.
	ErrValidationFlags = "VALIDATION_FLAGS"

	// ErrValidationNotFound indicates a referenced local resource (a file to
	// upload, a configuration module) does not exist.
	ErrValidationNotFound = "VALIDATION_NOT_FOUND"

	// ErrCommandNotFound indicates the command is unknown.
	ErrCommandNotFound = "COMMAND_NOT_FOUND"

	// ErrCommandNotAllowed indicates the command exists but is not available
	// in the current command context.
	ErrCommandNotAllowed = "COMMAND_NOT_ALLOWED"
)

// -----------------------------------------------------------------------------
// Remote Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrRemoteRequest is the generic remote failure.
	ErrRemoteRequest = "REMOTE_REQUEST_FAILED"

	// ErrRemoteBadRequest indicates the platform rejected the parameters (400).
	ErrRemoteBadRequest = "REMOTE_BAD_REQUEST"

	// ErrRemoteUnauthorized indicates missing or invalid credentials (401).
	ErrRemoteUnauthorized = "REMOTE_UNAUTHORIZED"

	// ErrRemoteForbidden indicates the identity lacks permission (403).
	ErrRemoteForbidden = "REMOTE_FORBIDDEN"

	// ErrRemoteNotFound indicates the resource or endpoint does not exist (404).
	ErrRemoteNotFound = "REMOTE_NOT_FOUND"

	// ErrRemoteServer indicates a 5xx from the platform.
	ErrRemoteServer = "REMOTE_SERVER_ERROR"

	// ErrRemoteUnreachable indicates no response was received at all.
	ErrRemoteUnreachable = "REMOTE_UNREACHABLE"

	// ErrRemoteTLS indicates the TLS handshake failed.
	ErrRemoteTLS = "REMOTE_TLS_FAILED"

	// ErrRemoteDecode indicates the response body could not be decoded.
	ErrRemoteDecode = "REMOTE_DECODE_FAILED"
)

// -----------------------------------------------------------------------------
// Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrInternalPassword indicates the password prompt produced no usable
	// password.
	ErrInternalPassword = "INTERNAL_PASSWORD"

	// ErrInternalPartial indicates a multi-step command completed its first
	// remote effect but not the follow-up.
	ErrInternalPartial = "INTERNAL_PARTIAL_EFFECT"

	// ErrInternalState indicates the session is in a state the command
	// cannot operate from (e.g. no active connection).
	ErrInternalState = "INTERNAL_STATE"
)

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParse indicates the configuration file is not valid YAML.
	ErrConfigParse = "CONFIG_PARSE_ERROR"

	// ErrConfigInvalid indicates a configuration value is out of range.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigWrite indicates the configuration file could not be written.
	ErrConfigWrite = "CONFIG_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Unclassified Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrUnexpected is attached to foreign errors when they are wrapped.
	ErrUnexpected = "UNEXPECTED"

	// ErrPanic indicates a command panicked.
	ErrPanic = "PANIC"
)

// RemoteCodeForStatus maps an HTTP status to a remote error code.
func RemoteCodeForStatus(status int) string {
	switch {
	case status == 0:
		return ErrRemoteUnreachable
	case status == 400:
		return ErrRemoteBadRequest
	case status == 401:
		return ErrRemoteUnauthorized
	case status == 403:
		return ErrRemoteForbidden
	case status == 404:
		return ErrRemoteNotFound
	case status >= 500:
		return ErrRemoteServer
	default:
		return ErrRemoteRequest
	}
}
