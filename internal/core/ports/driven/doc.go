// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Reads documents from the configured directory
//   - Normaliser: Transforms raw bytes into document text
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessor: Chunking pipeline stages
//   - EmbeddingService: Maps text to unit vectors
//   - VectorIndex / IndexStore: Exact inner-product index and its build-then-swap holder
//   - MetadataStore: Per-vector provenance, joined on vector ID
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
