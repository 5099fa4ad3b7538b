package helper

import (
	"fmt"
	"runtime"
	"strings"
)

// Error wraps an error with the operation that failed and the function it failed in.
type Error struct {
	Original  error
	Operation string
	Trace     string
}

// NewError wraps err with the failed operation and the calling function.
// It returns nil if err is nil.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}

	trace := "unknown"
	pc, _, _, ok := runtime.Caller(1)
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			trace = name[strings.LastIndex(name, "/")+1:]
		}
	}

	return &Error{
		Original:  err,
		Operation: operation,
		Trace:     trace,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Operation, e.Trace, e.Original)
}

func (e *Error) Unwrap() error {
	return e.Original
}
