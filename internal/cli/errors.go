package cli

import "errors"

// ErrUsage matches every bad-arguments error.
var ErrUsage = errors.New("usage error")

// UsageError reports missing or invalid command arguments. Nothing has
// been changed when it is returned.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string        { return e.Msg }
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

func usage(line string) error {
	return &UsageError{Msg: "Usage: " + line}
}

// hintError attaches a follow-up line shown under the failure.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }
