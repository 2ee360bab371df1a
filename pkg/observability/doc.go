/*
Package observability turns analyzer lifecycle hooks into logs and Prometheus metrics.

Hooks from several sources can be merged with Combine and passed to the analyzer with
sideeye.WithLifecycleHooks.
*/
package observability
