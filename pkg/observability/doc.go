/*
Package observability provides lifecycle hooks for monitoring the aacflow engine.

It includes Prometheus metrics for node visits, provider latency and verdicts,
structured logging of every engine event, and Chain for combining several sets
of hooks into the single domain.LifecycleHooks the engine accepts.
*/
package observability
