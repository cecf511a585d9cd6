package domain

// MetadataRow is the persisted provenance of one vector ID.
// The index and the metadata store are correlated solely by VectorID.
type MetadataRow struct {
	ChunkID      string
	VectorID     int64
	DocumentName string

	// PageOrSection is optional provenance inside the document.
	PageOrSection *string

	ChunkText string
}

// RetrievalResult is a metadata row joined with its similarity score.
type RetrievalResult struct {
	MetadataRow

	// Score is the inner-product similarity. Nil when the row had no
	// matching index hit.
	Score *float32
}

// Scored reports whether a similarity score is attached.
func (r RetrievalResult) Scored() bool {
	return r.Score != nil
}
