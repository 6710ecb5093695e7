package script

import (
	"errors"
	"fmt"
)

// CommandError reports a failed call into an external application.
type CommandError struct {
	// App names the application (editor, library).
	App string
	// Command names the operation that failed.
	Command string
	// Output is whatever the command printed before failing.
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.App, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsCommandError reports whether err carries a CommandError.
func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}
