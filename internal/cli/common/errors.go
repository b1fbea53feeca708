package common

import (
	"github.com/pugvideo/pugvideo-go/faults"
)

// ValidationError reports bad flags, arguments or input files. pugctl exits
// with status 2 for it.
func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

// InternalError reports a command that was wired or rendered wrongly, not a
// user mistake.
func InternalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
