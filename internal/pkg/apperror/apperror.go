// Package apperror defines the error type the HTTP layer maps onto
// response status codes. Domain modules declare their sentinel errors
// with New; anything that is not an AppError surfaces as a 500.
package apperror

// AppError couples a user-facing message with an HTTP status code.
type AppError struct {
	Code    int
	Message string
	Err     error // underlying cause, never serialized
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

// New builds a sentinel error carrying a status code.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a status code and message to an underlying error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
