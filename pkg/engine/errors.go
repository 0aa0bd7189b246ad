package engine

import "errors"

// Error classes surfaced by the interpreter and pipeline. None of them end the
// session; each produces exactly one error line in the OutputLog.
var (
	// ErrUnknownCommand is a parse error: the command token is not recognized.
	ErrUnknownCommand = errors.New("command not recognized")

	// ErrHostNotFound, ErrUnknownOperator and ErrUnknownMenu are lookup errors.
	ErrHostNotFound    = errors.New("host not found")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrUnknownMenu     = errors.New("unknown menu")

	// ErrMissingArgument and ErrInvalidField are validation errors, raised
	// before any pipeline or state change happens.
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidField    = errors.New("invalid field")

	// ErrCollaborator wraps any failure of the text-generation collaborator.
	ErrCollaborator = errors.New("collaborator failed")

	// ErrBusy is returned when an action is started while another is active.
	ErrBusy = errors.New("another action is still running")

	// ErrAborted marks a run cancelled by the operator.
	ErrAborted = errors.New("action aborted by operator")
)
