/*
Package domain contains the shared models of the worker protocol.

It defines the envelope format for all host<->background traffic, the
task-side contract, and transferable buffers. This package is kept free of
transport and I/O concerns, following Hexagonal Architecture principles.

# Key Entities

  - Envelope: One unit of host<->background communication with a kind and payload.
  - Task / TaskContext: The code assigned to a worker and the contract it runs against.
  - Buffer: A byte buffer whose ownership can move between host and background context.
  - LifecycleHooks: Optional callbacks for worker observability.
*/
package domain
