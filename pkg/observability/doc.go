/*
Package observability turns session lifecycle events into signals.

Metrics exposes Prometheus collectors fed by domain.LifecycleHooks, and
LogHooks writes the same events to a structured logger. Both are plain hook
sets, so hosts combine them with LifecycleHooks.Merge.
*/
package observability
