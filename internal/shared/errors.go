package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUnauthenticated    = fmt.Errorf("not authenticated")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrEmailTaken         = fmt.Errorf("email already registered")

	// Validation errors
	ErrValidation         = fmt.Errorf("validation failed")
	ErrMissingFile        = fmt.Errorf("no document selected")
	ErrIncompleteMetadata = fmt.Errorf("required metadata fields are empty")
	ErrDraftComplete      = fmt.Errorf("draft already submitted")

	// Collection and mutation errors
	ErrNotFound          = fmt.Errorf("not found")
	ErrAlreadyInProgress = fmt.Errorf("operation already in progress")

	// Transport errors
	ErrNetwork = fmt.Errorf("network error")
	ErrServer  = fmt.Errorf("server error")
)

// ErrorKind classifies an HTTP response outcome at the API gateway.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota
	KindForbidden
	KindNotFound
	KindValidationFailed
	KindServerError
	KindNetworkError
)

// APIError is the typed error value the gateway returns for expected HTTP
// failures. It never represents a 2xx response.
type APIError struct {
	Kind   ErrorKind
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Unwrap(), e.Detail)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%v: status %d", e.Unwrap(), e.Status)
	}
	return e.Unwrap().Error()
}

// Unwrap maps the kind onto a sentinel so callers can use [errors.Is]
// against the taxonomy above.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindValidationFailed:
		return ErrValidation
	case KindNetworkError:
		return ErrNetwork
	default:
		return ErrServer
	}
}
