package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is the text of one ingested file.
// Produced once per file during loading and never mutated.
type Document struct {
	// DocID is the filename stem.
	DocID string

	// Text is the full extracted text.
	Text string

	// Source is the path the document was read from.
	Source string
}

// Chunk is a bounded substring of a document, the unit of embedding and retrieval.
type Chunk struct {
	// DocID links to the owning Document.
	DocID string

	// ChunkID is "{DocID}_{Sequence}", unique within a build.
	ChunkID string

	// Text is the trimmed window text.
	Text string

	// Source is copied from the owning Document.
	Source string

	// Sequence is the emission index within the document.
	Sequence int
}

// ChunkID formats the identifier for the n-th chunk of a document.
func ChunkID(docID string, sequence int) string {
	return fmt.Sprintf("%s_%d", docID, sequence)
}

// DocIDFromPath returns the file stem used as a document ID.
func DocIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
