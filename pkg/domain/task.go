package domain

import "context"

// TaskContext is the contract exposed to code running inside a background
// execution context.
type TaskContext interface {
	// Context is cancelled when the worker is killed.
	Context() context.Context

	// Done completes the current invocation with zero or more result
	// values. With no values the host observes message() followed by
	// done(); with N values it observes message carrying all N values in
	// order. Only the first terminal call per invocation takes effect.
	Done(values ...any)

	// DoneTransfer is Done with an explicit transfer list: ownership of
	// the listed buffers moves to the host instead of being copied.
	DoneTransfer(transfer []*Buffer, values ...any)

	// Progress reports a numeric completion fraction, expected in [0,1]
	// though not enforced. May be called any number of times before the
	// terminal call; calls after it are dropped.
	Progress(fraction float64)
}

// Task is a unit of work executed in a background context. Each data
// envelope pushed by the host triggers one invocation carrying the
// envelope's payload as args. A non-nil return surfaces on the handle as a
// single error event; a panic is recovered and surfaced the same way. A
// task that returns nil without calling Done completes as a zero-value
// terminal.
type Task func(tc TaskContext, args ...any) error

// Library is a named helper loaded into the background context before the
// task body executes.
type Library func(ctx context.Context) error
