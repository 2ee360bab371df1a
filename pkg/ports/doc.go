/*
Package ports defines the driven ports (interfaces) for the sideeye analyzer.

These interfaces decouple trial construction from external implementations, allowing
the analyzer to work with various storage backends, item sources and lock providers.

# Key Interfaces

  - ItemLoader: Resolves Item definitions by number (e.g., from Loam documents or Memory).
  - TrialStore: Persists and loads constructed Trials.
  - DistributedLocker: Serializes measure updates on a trial across processes.
  - Analyzer: The surface consumed by the driving adapters (HTTP, MCP, CLI).
*/
package ports
