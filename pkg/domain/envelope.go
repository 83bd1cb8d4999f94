package domain

// Kind categorizes an envelope flowing between the host and a background
// execution context.
type Kind string

// Host -> background.
const (
	KindRunCode          Kind = "run-code"
	KindRunScript        Kind = "run-script"
	KindRunScriptImports Kind = "run-script-with-imports"
	KindData             Kind = "data"
)

// Background -> host.
const (
	KindMessage  Kind = "message"
	KindProgress Kind = "progress"
	KindError    Kind = "error"
	KindDone     Kind = "done"
	KindExit     Kind = "exit"
)

// ErrorInfo carries a task or transport failure across the boundary.
// Stack is best-effort and may be empty.
type ErrorInfo struct {
	Message string `json:"message" cbor:"message"`
	Stack   string `json:"stack,omitempty" cbor:"stack,omitempty"`
}

// Envelope is one unit of host<->background communication. The logical
// shape {kind, payload, transferList?} is shared by both transports; the
// remaining fields are kind-specific and zero otherwise.
type Envelope struct {
	Kind     Kind       `cbor:"kind"`
	Payload  []any      `cbor:"payload,omitempty"`
	Script   string     `cbor:"script,omitempty"`
	Imports  []string   `cbor:"imports,omitempty"`
	Progress float64    `cbor:"progress,omitempty"`
	Err      *ErrorInfo `cbor:"err,omitempty"`

	// Task rides only in-process; it is never serialized.
	Task Task `cbor:"-" json:"-"`

	// Transfer lists buffers whose backing memory moves to the receiver
	// instead of being copied. Honored by the thread transport only.
	Transfer []*Buffer `cbor:"-" json:"-"`
}
