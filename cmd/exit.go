package cmd

import (
	"errors"
	"fmt"

	"github.com/arcanaland/pokedon/internal/generator"
	"github.com/arcanaland/pokedon/internal/project"
)

// Exit codes
const (
	ExitFailure        = 1
	ExitRenderFailed   = 2
	ExitPictureMissing = 3
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// toExitError maps domain errors to exit codes and user-facing messages
func toExitError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	var renderErr *generator.RenderError
	var missingPic *generator.MissingPictureError
	var notFound *project.NotFoundError

	switch {
	case errors.As(err, &exitErr):
		return exitErr
	case errors.As(err, &renderErr):
		return &ExitError{
			Code: ExitRenderFailed,
			Message: fmt.Sprintf("[ERROR] %v\nRendered content (first 500 chars):\n%s",
				renderErr, renderErr.Snippet),
			Err: err,
		}
	case errors.As(err, &missingPic):
		return &ExitError{Code: ExitPictureMissing, Message: "[ERROR] " + missingPic.Error(), Err: err}
	case errors.As(err, &notFound):
		return &ExitError{Code: ExitFailure, Message: notFound.Error(), Err: err}
	default:
		return &ExitError{Code: ExitFailure, Message: "[ERROR] " + err.Error(), Err: err}
	}
}
