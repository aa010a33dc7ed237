package ending

import (
	"github.com/pkg/errors"
)

// Response is the envelope every command result is reported in. Exactly one
// of Data and Error is set.
type Response[T any] struct {
	Success bool    `json:"success" yaml:"success"`
	Data    *T      `json:"data" yaml:"data"`
	Error   *string `json:"error" yaml:"error"`
}

// Success wraps data in a successful response.
func Success[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: &data}
}

// Failure wraps err in a failed response. A nil err still yields a failure
// with an empty message.
func Failure[T any](err error) Response[T] {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Response[T]{Success: false, Error: &msg}
}

// From returns Failure(err) when err is non-nil and Success(data) otherwise.
func From[T any](data T, err error) Response[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(data)
}

// Err returns the failure as an error, or nil for a successful response.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == nil {
		return errors.New("failed without message")
	}
	return errors.New(*r.Error)
}
