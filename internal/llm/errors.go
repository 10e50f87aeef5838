package llm

import "fmt"

// ErrProvider indicates the vendor call itself failed: a network error, a
// non-success vendor status, a malformed vendor envelope, or a timeout.
type ErrProvider struct {
	Provider Provider
	Cause    error
}

func (e *ErrProvider) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ErrProvider) Unwrap() error {
	return e.Cause
}
