package translator

import (
	"errors"
)

// Kind classifies a translation failure.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindMalformedResponse
	KindAuth
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindMalformedResponse:
		return "malformed_response"
	case KindAuth:
		return "auth"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Generators wrap these so the client can classify their failures.
var (
	ErrInvalidCredential = errors.New("invalid API credential")
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is the typed failure returned by Client.Translate. Its message is
// meant to be shown to the user as is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a translation failure, or 0 if err is not one.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
