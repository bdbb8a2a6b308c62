package errors

import stderrors "errors"

// As and Is forward to the standard library so callers importing this package
// under its default name still reach them.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
