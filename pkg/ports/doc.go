/*
Package ports defines the driven ports (interfaces) for the worker core.

These interfaces decouple the worker handle from concrete execution
primitives, allowing the same state machine to drive an OS child process or
an in-process background context.

# Key Interfaces

  - Transport: Carries envelopes between the host and one background execution context.
  - PortAllocator: Hands out collision-free inspector ports for debug spawns.

The package also exports contract test suites (RunTransportContract,
RunPortAllocatorContract) that adapter packages run against their
implementations.
*/
package ports
