package attendance

import (
	"errors"
	"fmt"
)

// Kind classifies why a pull failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuth
	KindStructure
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindStructure:
		return "structure"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Retryable reports whether a new run could succeed without user action.
func (k Kind) Retryable() bool {
	return k == KindNetwork
}

// Message is the fixed user-facing text for a failure kind.
func (k Kind) Message() string {
	switch k {
	case KindNetwork:
		return "Network timeout or connection issue."
	case KindAuth:
		return "Invalid credentials. Please check your username and password."
	case KindStructure:
		return "Unable to extract attendance data. Website structure may have changed."
	case KindConfig:
		return "Credentials not set. Please update them in Settings."
	default:
		return "An unexpected error occurred during scraping."
	}
}

// FetchError is a classified pull failure.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewError wraps err with kind.
func NewError(kind Kind, err error) error {
	return &FetchError{Kind: kind, Err: err}
}

// KindOf returns the kind of the first FetchError in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
