package pipeline

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindDecode    Kind = "decode"
	KindInference Kind = "inference"
	KindTimeout   Kind = "timeout"
	KindCanceled  Kind = "canceled"
	KindEncode    Kind = "encode"
	KindStore     Kind = "store"
	KindInternal  Kind = "internal"
)

// Error tags a failure with the pipeline step it came from.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
