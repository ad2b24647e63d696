package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid input")
	ErrDuplicate    = errors.New("already exists")
	ErrInUse        = errors.New("in use")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Error lleva un mensaje para el cliente y su tipo (una de las sentinelas de arriba).
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message devuelve el texto apto para mostrar al cliente.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	for _, k := range []error{ErrNotFound, ErrInvalid, ErrDuplicate, ErrInUse, ErrForbidden, ErrUnauthorized, ErrEmptyCart} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "internal error"
}
