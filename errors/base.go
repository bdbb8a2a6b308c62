package errors

import (
	"fmt"
	"reflect"
)

type Error interface {
	error
	New(args ...any) BaseError
}

type BaseError struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`

	messageFormat string
}

func (e BaseError) Error() string {
	return e.Message
}

// New returns a copy of the error with its message formatted from args.
func (e *BaseError) New(args ...any) BaseError {

	created := *e
	created.Message = fmt.Sprintf(e.messageFormat, args...)
	return created
}

// Is matches any error carrying the same code, so errors.Is works against the
// package-level definitions regardless of the formatted message.
func (e BaseError) Is(target error) bool {

	switch t := target.(type) {
	case BaseError:
		return t.Code == e.Code
	case *BaseError:
		return t != nil && t.Code == e.Code
	default:
		return false
	}
}

func (e BaseError) IsNil() bool {
	return reflect.ValueOf(e).IsZero()
}

func TryAssertError(err error) (BaseError, bool) {

	var asserted BaseError
	ok := As(err, &asserted)
	return asserted, ok
}

func IsError(err error, expectedError BaseError) bool {

	asserted, ok := TryAssertError(err)
	if !ok {
		return false
	}

	return asserted.Code == expectedError.Code && asserted.Message == expectedError.Message
}

func new(errorCode int, name string, messageFormat string) Error {

	return &BaseError{Code: errorCode, Name: name, messageFormat: messageFormat}
}
