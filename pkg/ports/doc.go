/*
Package ports defines the driven ports (interfaces) of the tapevm engine.

These interfaces decouple the engine and its transports from concrete backends.

# Key Interfaces

  - Executor: what transports (HTTP, MCP, CLI runner) need from the engine.
  - ResultCache: optional memoization of deterministic invocations (memory, Redis).
  - TokenWallet: caller-side storage of named tokens used by the CLI (file, memory).
  - DistributedLocker: cross-replica locking so one replica fills a missing cache entry (Redis).
*/
package ports
