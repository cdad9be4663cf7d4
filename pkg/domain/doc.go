/*
Package domain contains the core domain models of the tapevm machine.

It defines the execution snapshot that travels between invocations, the outcome
of a single invocation and the error taxonomy shared by every adapter. This
package is kept free of I/O and persistence concerns.

# Key Entities

  - State: the full machine snapshot (program, pointers, tape, output, input flag).
  - Outcome: how an invocation ended (finished, suspended, input rejected).
  - LifecycleHooks: callbacks fired by the engine for observability.
*/
package domain
