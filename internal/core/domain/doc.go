// Package domain defines the core entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: the text of one ingested file
//   - Chunk: an overlapping window of a document, the unit of retrieval
//   - MetadataRow: the persisted provenance of one vector ID
//   - RetrievalResult: a metadata row joined with its similarity score
//   - BuildReport: the outcome of one full index build
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
