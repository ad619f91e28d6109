/*
Package ports defines the driven ports (interfaces) for the aacflow engine.

These interfaces decouple the workflow from external implementations, allowing
the engine to work with various phrase stores and text providers, and to be
substituted with fakes in tests.

# Key Interfaces

  - PhraseSource: Reads recorded phrase tokens (e.g., from Redis or Memory).
  - PhraseRecorder: Appends new tokens to a user's phrase list.
  - ChatProvider: Generation and verification text providers.
  - Composer: The workflow entry used by the HTTP and MCP adapters.
  - Locker: Cross-replica mutual exclusion for per-user runs.
*/
package ports
