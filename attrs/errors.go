package attrs

import "github.com/pugvideo/pugvideo-go/faults"

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func frozenError() error {
	return faults.NewFrozenError("")
}
