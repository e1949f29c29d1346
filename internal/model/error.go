package model

// Error codes for the session protocol failure classes.
const (
	ErrCodeProtocol    = "PROTOCOL_ERROR"
	ErrCodeReference   = "UNKNOWN_REFERENCE"
	ErrCodePersistence = "PERSISTENCE_FAILED"
	ErrCodeConnection  = "CONNECTION_LOST"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Reference errors reject a single submission and keep
// the session alive; they must never tear down the connection.
var (
	ErrUnknownBase       = NewDomainError(ErrCodeReference, "order references a base not on the menu")
	ErrUnknownTopping    = NewDomainError(ErrCodeReference, "order references a topping not on the menu")
	ErrUnknownSpiceLevel = NewDomainError(ErrCodeReference, "order references a spice level not on the menu")
	ErrUnrecognizedShape = NewDomainError(ErrCodeProtocol, "message is neither a config request nor an order")
)
