package domain

import "errors"

// ErrTerminated is returned when an operation reaches a transport that has
// already been terminated.
var ErrTerminated = errors.New("worker terminated")

// ErrNoTask is returned when a data envelope arrives before any task has
// been assigned.
var ErrNoTask = errors.New("no task assigned")

// ErrScriptNotFound is returned when a script or import name cannot be
// resolved.
var ErrScriptNotFound = errors.New("script not registered")

// ErrUnknownKind marks an envelope whose kind is not part of the protocol.
var ErrUnknownKind = errors.New("unknown envelope kind")

// TaskError is a failure raised inside the background task and relayed to
// the host. It is never fatal to the handle.
type TaskError struct {
	Message string
	Stack   string
}

func (e *TaskError) Error() string {
	return e.Message
}
