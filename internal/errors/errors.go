// Package errors provides the custom error types used throughout the
// ingestion pipeline. Each failure tier (transport, parse, persistence)
// gets its own sentinel values so callers can branch on error codes
// without string matching.
package errors

// AppError represents a structured application error with a stable code,
// a human-readable message, and an optional wrapped internal error.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code, so errors.Is works against the sentinels
// even for wrapped or re-messaged copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// Transport-tier errors (EDGAR client).
var (
	ErrRateLimited = &AppError{Code: "RATE_LIMITED", Message: "EDGAR rejected the request due to rate limiting"}
	ErrForbidden   = &AppError{Code: "FORBIDDEN", Message: "EDGAR denied access to the requested resource"}
	ErrNotFound    = &AppError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrTransport   = &AppError{Code: "TRANSPORT", Message: "Transport error while contacting EDGAR"}

	// ErrFilingNotFound means every candidate document path was exhausted.
	ErrFilingNotFound = &AppError{Code: "FILING_NOT_FOUND", Message: "No retrievable document found for filing"}
)

// Parse-tier errors (filing parser).
var (
	ErrUnsupportedFormat  = &AppError{Code: "UNSUPPORTED_FORMAT", Message: "Filing document is in an unrecognized format"}
	ErrNoInformationTable = &AppError{Code: "NO_INFORMATION_TABLE", Message: "Filing document has no information table section"}
)

// Persistence-tier errors (storage).
var (
	ErrDuplicateFiling = &AppError{Code: "DUPLICATE_FILING", Message: "A filing with this accession number already exists"}
	ErrStorage         = &AppError{Code: "STORAGE", Message: "Storage operation failed"}
)

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input"}
)
