package provider

import "fmt"

// Kind is the category of a typed provider error.
type Kind string

const (
	KindChallenge          Kind = "challenge_required"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnavailable        Kind = "unavailable"
	KindUnknown            Kind = "unknown"
)

// Error is returned by Client implementations that know why a call failed.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
